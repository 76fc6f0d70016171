package location

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/joefazee/countrylookup/internal/logger"
)

// CountryResolver resolves the device's ISO country code, or reports false.
type CountryResolver interface {
	ResolveCountryCode(ctx context.Context) (string, bool)
}

// Resolver drives the permission prompt, location fix and reverse geocoding.
// Concurrent callers share one pending resolution and all receive its result.
type Resolver struct {
	platform Platform
	geocoder Geocoder
	timeout  time.Duration
	logger   logger.Logger

	mu      sync.Mutex
	pending *completion
}

var _ CountryResolver = (*Resolver)(nil)

// NewResolver creates a resolver. A zero timeout waits until the platform answers.
func NewResolver(platform Platform, geocoder Geocoder, timeout time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Resolver{
		platform: platform,
		geocoder: geocoder,
		timeout:  timeout,
		logger:   log,
	}
}

// ResolveCountryCode never returns an error: denial, fix failure, geocoding
// failure, timeout and ctx cancellation all resolve to ("", false).
func (r *Resolver) ResolveCountryCode(ctx context.Context) (string, bool) {
	r.mu.Lock()
	c := r.pending
	if c == nil {
		c = newCompletion()
		r.pending = c
		r.mu.Unlock()
		r.begin(c)
	} else {
		r.mu.Unlock()
		r.logger.Debug("joining pending location resolution", nil)
	}

	return c.wait(ctx)
}

func (r *Resolver) begin(c *completion) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), r.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	go func() {
		defer cancel()
		select {
		case <-c.done:
		case <-ctx.Done():
			r.logger.Debug("location resolution timed out", map[string]interface{}{"timeout": r.timeout.String()})
			r.complete(c, "", false)
		}
	}()

	switch status := r.platform.AuthorizationStatus(); status {
	case AuthorizationGranted:
		r.requestFix(ctx, c)
	case AuthorizationNotDetermined:
		r.platform.RequestAuthorization(func(answer Authorization) {
			if answer == AuthorizationGranted {
				r.requestFix(ctx, c)
				return
			}
			r.logger.Debug("location permission not granted", map[string]interface{}{"authorization": answer.String()})
			r.complete(c, "", false)
		})
	default:
		r.logger.Debug("location permission unavailable", map[string]interface{}{"authorization": status.String()})
		r.complete(c, "", false)
	}
}

func (r *Resolver) requestFix(ctx context.Context, c *completion) {
	r.platform.RequestLocation(func(coord Coordinate, err error) {
		if err != nil {
			r.logger.Debug("location fix failed", map[string]interface{}{"error": err.Error()})
			r.complete(c, "", false)
			return
		}

		code, err := r.geocoder.CountryCode(ctx, coord)
		if err != nil || strings.TrimSpace(code) == "" {
			fields := map[string]interface{}{"latitude": coord.Latitude, "longitude": coord.Longitude}
			if err != nil {
				fields["error"] = err.Error()
			}
			r.logger.Debug("reverse geocoding failed", fields)
			r.complete(c, "", false)
			return
		}
		r.complete(c, strings.ToUpper(strings.TrimSpace(code)), true)
	})
}

func (r *Resolver) complete(c *completion, code string, ok bool) {
	if !c.resolve(code, ok) {
		return
	}
	r.mu.Lock()
	if r.pending == c {
		r.pending = nil
	}
	r.mu.Unlock()
}
