package location

import (
	"errors"
	"strings"
	"sync"

	"github.com/joefazee/countrylookup/internal/validator"
	"github.com/joefazee/countrylookup/models"
)

// Authorization mirrors the platform's location permission states
type Authorization int

const (
	AuthorizationNotDetermined Authorization = iota
	AuthorizationGranted
	AuthorizationDenied
	AuthorizationRestricted
)

func (a Authorization) String() string {
	switch a {
	case AuthorizationGranted:
		return "granted"
	case AuthorizationDenied:
		return "denied"
	case AuthorizationRestricted:
		return "restricted"
	default:
		return "not_determined"
	}
}

// ParseAuthorization accepts the String form, plus "authorized" for granted.
func ParseAuthorization(s string) (Authorization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "not_determined", "undetermined":
		return AuthorizationNotDetermined, nil
	case "granted", "authorized":
		return AuthorizationGranted, nil
	case "denied":
		return AuthorizationDenied, nil
	case "restricted":
		return AuthorizationRestricted, nil
	default:
		return AuthorizationNotDetermined, models.ErrInvalidAuthorization
	}
}

// Coordinate is a WGS84 position
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate is on the globe
func (c Coordinate) Valid() bool {
	return validator.IsLatitude(c.Latitude) && validator.IsLongitude(c.Longitude)
}

// ErrLocationUnavailable is reported when no fix can be produced.
var ErrLocationUnavailable = errors.New("location unavailable")

// Platform is the device location service. Results are delivered through callbacks
// that may run on any goroutine; a platform may call them more than once.
type Platform interface {
	AuthorizationStatus() Authorization
	RequestAuthorization(done func(Authorization))
	RequestLocation(done func(Coordinate, error))
}

// StaticPlatform answers from fixed values, used by the CLI and configuration.
type StaticPlatform struct {
	// Prompt is the answer given when authorization is requested.
	Prompt     Authorization
	Status     Authorization
	Coordinate *Coordinate
}

func (p *StaticPlatform) AuthorizationStatus() Authorization {
	return p.Status
}

func (p *StaticPlatform) RequestAuthorization(done func(Authorization)) {
	go done(p.Prompt)
}

func (p *StaticPlatform) RequestLocation(done func(Coordinate, error)) {
	if p.Coordinate == nil || !p.Coordinate.Valid() {
		go done(Coordinate{}, ErrLocationUnavailable)
		return
	}
	c := *p.Coordinate
	go done(c, nil)
}

// DevicePlatform is fed by a remote client: the client reports its permission
// answer and its position, and pending requests are answered when it does.
type DevicePlatform struct {
	mu          sync.Mutex
	status      Authorization
	coordinate  *Coordinate
	authWaiters []func(Authorization)
	fixWaiters  []func(Coordinate, error)
}

// NewDevicePlatform starts in the given authorization state
func NewDevicePlatform(status Authorization) *DevicePlatform {
	return &DevicePlatform{status: status}
}

func (p *DevicePlatform) AuthorizationStatus() Authorization {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// RequestAuthorization waits for the client's next Report carrying a decision.
func (p *DevicePlatform) RequestAuthorization(done func(Authorization)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != AuthorizationNotDetermined {
		status := p.status
		go done(status)
		return
	}
	p.authWaiters = append(p.authWaiters, done)
}

// RequestLocation answers with the last reported position or waits for one.
func (p *DevicePlatform) RequestLocation(done func(Coordinate, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == AuthorizationDenied || p.status == AuthorizationRestricted {
		go done(Coordinate{}, ErrLocationUnavailable)
		return
	}
	if p.coordinate != nil {
		c := *p.coordinate
		go done(c, nil)
		return
	}
	p.fixWaiters = append(p.fixWaiters, done)
}

// Report records what the client told us and releases waiting requests.
func (p *DevicePlatform) Report(status Authorization, coordinate *Coordinate) error {
	if coordinate != nil && !coordinate.Valid() {
		return models.ErrInvalidCoordinate
	}

	p.mu.Lock()
	p.status = status
	if coordinate != nil {
		c := *coordinate
		p.coordinate = &c
	}

	var authWaiters []func(Authorization)
	if status != AuthorizationNotDetermined {
		authWaiters, p.authWaiters = p.authWaiters, nil
	}

	var fixWaiters []func(Coordinate, error)
	var fix Coordinate
	var fixErr error
	switch {
	case status == AuthorizationDenied || status == AuthorizationRestricted:
		fixWaiters, p.fixWaiters = p.fixWaiters, nil
		fixErr = ErrLocationUnavailable
	case p.coordinate != nil:
		fixWaiters, p.fixWaiters = p.fixWaiters, nil
		fix = *p.coordinate
	}
	p.mu.Unlock()

	for _, done := range authWaiters {
		go done(status)
	}
	for _, done := range fixWaiters {
		go done(fix, fixErr)
	}
	return nil
}
