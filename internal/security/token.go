package security

import (
	"time"

	"github.com/google/uuid"
)

const (
	TokenScopeSession = "session"
)

// Maker makes a new token
type Maker interface {

	// CreateToken creates a new token bound to a session for a specific duration
	CreateToken(sessionID uuid.UUID, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid or not
	VerifyToken(token string) (*Payload, error)
}
