package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/joefazee/countrylookup/internal/security"
)

// Service manages search sessions for the HTTP API
type Service interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ReportLocation(ctx context.Context, id uuid.UUID, req *LocationRequest) error
	CloseSession(ctx context.Context, payload *security.Payload) error
}
