package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/internal/security"
)

type service struct {
	registry    *Registry
	tokenMaker  security.Maker
	revocations *cache.Revocations
	tokenTTL    time.Duration
	logger      logger.Logger
}

// NewService creates a session service backed by registry
func NewService(registry *Registry, tokenMaker security.Maker, revocations *cache.Revocations, tokenTTL time.Duration, log logger.Logger) Service {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &service{
		registry:    registry,
		tokenMaker:  tokenMaker,
		revocations: revocations,
		tokenTTL:    tokenTTL,
		logger:      log,
	}
}

// CreateSession starts a coordinator, issues its token and kicks off the
// location based auto-add in the background.
func (s *service) CreateSession(_ context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	platform := location.NewDevicePlatform(location.AuthorizationNotDetermined)
	if req != nil && req.Location != nil {
		if err := platform.Report(req.Location.authorization, req.Location.coordinate); err != nil {
			return nil, err
		}
	}

	session, err := s.registry.Create(platform)
	if err != nil {
		return nil, err
	}

	token, payload, err := s.tokenMaker.CreateToken(session.ID, s.tokenTTL)
	if err != nil {
		_ = s.registry.Delete(session.ID)
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	go session.Coordinator.AutoAddCountryBasedOnLocation(context.Background())

	return &CreateSessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: payload.ExpiredAt,
	}, nil
}

func (s *service) GetSession(_ context.Context, id uuid.UUID) (*Session, error) {
	return s.registry.Get(id)
}

func (s *service) ReportLocation(_ context.Context, id uuid.UUID, req *LocationRequest) error {
	session, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	return session.Platform.Report(req.authorization, req.coordinate)
}

// CloseSession closes the session and revokes the token for the rest of its lifetime.
func (s *service) CloseSession(ctx context.Context, payload *security.Payload) error {
	if err := s.registry.Delete(payload.SessionID); err != nil {
		return err
	}
	if s.revocations == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, payload.ID.String(), payload.TTL()); err != nil {
		s.logger.Error(err, map[string]interface{}{"session_id": payload.SessionID.String()})
		return fmt.Errorf("revoke session token: %w", err)
	}
	return nil
}
