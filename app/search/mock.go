package search

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/joefazee/countrylookup/internal/security"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CreateSessionResponse), args.Error(1)
}

func (m *MockService) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockService) ReportLocation(ctx context.Context, id uuid.UUID, req *LocationRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *MockService) CloseSession(ctx context.Context, payload *security.Payload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}
