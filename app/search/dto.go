package search

import (
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/internal/validator"
)

const maxQueryRunes = 100

// LocationRequest is what a client reports about its location permission and position.
type LocationRequest struct {
	Authorization string   `json:"authorization" example:"granted"`
	Latitude      *float64 `json:"latitude,omitempty" example:"30.0444"`
	Longitude     *float64 `json:"longitude,omitempty" example:"31.2357"`

	authorization location.Authorization
	coordinate    *location.Coordinate
}

func (r *LocationRequest) Validate(v *validator.Validator) bool {
	auth, err := location.ParseAuthorization(r.Authorization)
	v.Check(err == nil, "authorization", "authorization must be one of not_determined, granted, denied, restricted")
	r.authorization = auth

	v.Check((r.Latitude == nil) == (r.Longitude == nil), "latitude", "latitude and longitude must be sent together")
	if r.Latitude != nil && r.Longitude != nil {
		v.Check(validator.IsLatitude(*r.Latitude), "latitude", "latitude must be between -90 and 90")
		v.Check(validator.IsLongitude(*r.Longitude), "longitude", "longitude must be between -180 and 180")
		r.coordinate = &location.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return v.Valid()
}

// CreateSessionRequest is the optional body of a session creation
type CreateSessionRequest struct {
	Location *LocationRequest `json:"location,omitempty"`
}

func (r *CreateSessionRequest) Validate(v *validator.Validator) bool {
	if r.Location != nil {
		r.Location.Validate(v)
	}
	return v.Valid()
}

// CreateSessionResponse carries the bearer token for the new session
type CreateSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// QueryRequest replaces the search text
type QueryRequest struct {
	Text string `json:"text" example:"Egypt"`
}

func (r *QueryRequest) Validate(v *validator.Validator) bool {
	v.Check(validator.MaxRunes(r.Text, maxQueryRunes), "text", "text must not be more than 100 characters")
	return v.Valid()
}

// AddFavoriteRequest picks one of the current search results
type AddFavoriteRequest struct {
	ResultIndex *int `json:"result_index" binding:"required" example:"0"`
}

// StateResponse is the search state on the wire
type StateResponse struct {
	Phase   string                      `json:"phase" example:"success"`
	Results []countries.CountryResponse `json:"results"`
	Message string                      `json:"message,omitempty"`
}

// AlertResponse is a pending alert on the wire
type AlertResponse struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SnapshotResponse is the full coordinator state on the wire
type SnapshotResponse struct {
	Version    uint64                      `json:"version"`
	SearchText string                      `json:"search_text"`
	State      StateResponse               `json:"state"`
	Favorites  []countries.CountryResponse `json:"favorites"`
	Alert      *AlertResponse              `json:"alert,omitempty"`
}

func ToSnapshotResponse(s Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		Version:    s.Version,
		SearchText: s.SearchText,
		State: StateResponse{
			Phase:   s.State.Phase.String(),
			Message: s.State.Message,
		},
		Favorites: countries.ToCountryResponseList(s.Favorites),
	}
	if s.State.Phase == PhaseSuccess {
		resp.State.Results = countries.ToCountryResponseList(s.State.Results)
	}
	if s.Alert != nil {
		resp.Alert = &AlertResponse{Title: s.Alert.Title, Message: s.Alert.Message}
	}
	return resp
}
