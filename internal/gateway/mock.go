package gateway

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/watchroom/client-go/internal/types"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(LoginResponse), args.Error(1)
}

func (m *MockGateway) Register(ctx context.Context, req RegisterRequest) (types.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockGateway) CreateRoom(ctx context.Context, draft types.RoomDraft) (types.Room, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(types.Room), args.Error(1)
}

func (m *MockGateway) ListRooms(ctx context.Context) ([]types.Room, error) {
	args := m.Called(ctx)
	if rooms, ok := args.Get(0).([]types.Room); ok {
		return rooms, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGateway) ListUsers(ctx context.Context) ([]types.User, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]types.User); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}
