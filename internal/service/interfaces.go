package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
	"github.com/pageza/grocerylist/backend/internal/types"
)

// IAuthService verifies caller tokens.
type IAuthService interface {
	ValidateToken(tokenString string) (*types.TokenClaims, error)
}

type ChatServiceInterface interface {
	Respond(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error)
	ProviderName() string
}

type ListServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, name string) (*models.List, error)
	ListForUser(ctx context.Context, userID uuid.UUID) (*types.ListsResponse, error)
	Get(ctx context.Context, userID, listID uuid.UUID) (*types.ListDetail, error)
	Permissions(ctx context.Context, userID, listID uuid.UUID) (*permission.Decision, error)
	Delete(ctx context.Context, userID, listID uuid.UUID) error
	Join(ctx context.Context, userID uuid.UUID, shareCode string) (*models.ListMember, error)
	Members(ctx context.Context, userID, listID uuid.UUID) ([]models.ListMember, error)
	UpdateMemberPermission(ctx context.Context, userID, listID, memberID uuid.UUID, canEdit bool) (*models.ListMember, error)
	RemoveMember(ctx context.Context, userID, listID, memberID uuid.UUID) error
}

type GroceryServiceInterface interface {
	ListItems(ctx context.Context, userID, listID uuid.UUID, status models.ItemStatus) ([]models.GroceryItem, error)
	CreateItem(ctx context.Context, userID, listID uuid.UUID, name string) (*models.GroceryItem, error)
	UpdateStatus(ctx context.Context, userID, listID, itemID uuid.UUID, status models.ItemStatus) (*models.GroceryItem, error)
	DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error
}

type ExportServiceInterface interface {
	Export(ctx context.Context, userID, listID uuid.UUID) (*types.ExportResponse, error)
}

var (
	_ IAuthService            = (*AuthService)(nil)
	_ ChatServiceInterface    = (*ChatService)(nil)
	_ ListServiceInterface    = (*ListService)(nil)
	_ GroceryServiceInterface = (*GroceryService)(nil)
	_ ExportServiceInterface  = (*ExportService)(nil)
	_ Provider                = (*LLMService)(nil)
)
