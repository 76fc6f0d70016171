package search

import (
	"fmt"

	"github.com/joefazee/countrylookup/models"
)

// Phase is the search state variant
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSearching
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseSearching:
		return "searching"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// State is the search state. Results is set only in PhaseSuccess and Message only
// in PhaseError.
type State struct {
	Phase   Phase
	Results []models.Country
	Message string
}

func Idle() State {
	return State{Phase: PhaseIdle}
}

func Searching() State {
	return State{Phase: PhaseSearching}
}

func Success(results []models.Country) State {
	return State{Phase: PhaseSuccess, Results: results}
}

func Failure(message string) State {
	return State{Phase: PhaseError, Message: message}
}

// Alert is a modal message the user has to acknowledge
type Alert struct {
	Title   string
	Message string
}

const (
	maxLimitTitle = "Maximum Limit Reached"
	networkTitle  = "No Internet Connection"
)

// MaxLimitAlert is shown when a query is typed while favorites are full.
func MaxLimitAlert(limit int) Alert {
	return Alert{
		Title:   maxLimitTitle,
		Message: fmt.Sprintf("You can only add up to %d countries. Please remove a country to add a new one.", limit),
	}
}

// NetworkAlert is shown whenever the network is unavailable.
func NetworkAlert() Alert {
	return Alert{
		Title:   networkTitle,
		Message: "Please check your internet connection and try again.",
	}
}

// Snapshot is a consistent copy of the coordinator state. Version increases with
// every published change.
type Snapshot struct {
	Version    uint64
	SearchText string
	State      State
	Favorites  []models.Country
	Alert      *Alert
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Favorites = append([]models.Country(nil), s.Favorites...)
	if s.State.Results != nil {
		out.State.Results = append([]models.Country(nil), s.State.Results...)
	}
	if s.Alert != nil {
		a := *s.Alert
		out.Alert = &a
	}
	return out
}
