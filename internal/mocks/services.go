package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
	"github.com/pageza/grocerylist/backend/internal/types"
)

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) Respond(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatResponse), args.Error(1)
}

func (m *MockChatService) ProviderName() string {
	return m.Called().String(0)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context, userID, listID uuid.UUID) (*types.ExportResponse, error) {
	args := m.Called(ctx, userID, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExportResponse), args.Error(1)
}

// MockListService covers the list operations the handlers call.
type MockListService struct {
	mock.Mock
}

func (m *MockListService) Create(ctx context.Context, userID uuid.UUID, name string) (*models.List, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.List), args.Error(1)
}

func (m *MockListService) ListForUser(ctx context.Context, userID uuid.UUID) (*types.ListsResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ListsResponse), args.Error(1)
}

func (m *MockListService) Get(ctx context.Context, userID, listID uuid.UUID) (*types.ListDetail, error) {
	args := m.Called(ctx, userID, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ListDetail), args.Error(1)
}

func (m *MockListService) Permissions(ctx context.Context, userID, listID uuid.UUID) (*permission.Decision, error) {
	args := m.Called(ctx, userID, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Decision), args.Error(1)
}

func (m *MockListService) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	return m.Called(ctx, userID, listID).Error(0)
}

func (m *MockListService) Join(ctx context.Context, userID uuid.UUID, shareCode string) (*models.ListMember, error) {
	args := m.Called(ctx, userID, shareCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListMember), args.Error(1)
}

func (m *MockListService) Members(ctx context.Context, userID, listID uuid.UUID) ([]models.ListMember, error) {
	args := m.Called(ctx, userID, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ListMember), args.Error(1)
}

func (m *MockListService) UpdateMemberPermission(ctx context.Context, userID, listID, memberID uuid.UUID, canEdit bool) (*models.ListMember, error) {
	args := m.Called(ctx, userID, listID, memberID, canEdit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ListMember), args.Error(1)
}

func (m *MockListService) RemoveMember(ctx context.Context, userID, listID, memberID uuid.UUID) error {
	return m.Called(ctx, userID, listID, memberID).Error(0)
}
