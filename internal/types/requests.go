package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
)

// CreateItemRequest is the body of POST /groceries.
type CreateItemRequest struct {
	Name   string `json:"name" binding:"required"`
	ListID string `json:"list_id" binding:"required"`
}

// UpdateItemRequest is the body of PUT /groceries.
type UpdateItemRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
	ListID string `json:"list_id" binding:"required"`
}

// DeleteItemRequest is the body of DELETE /groceries.
type DeleteItemRequest struct {
	ID     string `json:"id" binding:"required"`
	ListID string `json:"list_id" binding:"required"`
}

type CreateListRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinListRequest struct {
	ShareCode string `json:"share_code" binding:"required"`
}

// UpdateMemberRequest is the body of PUT /lists/:id/share. CanEdit is a
// pointer so an explicit false can be told apart from a missing field.
type UpdateMemberRequest struct {
	UserID  string `json:"user_id"`
	CanEdit *bool  `json:"can_edit"`
}

// SharedList is a list the caller reaches through a membership.
type SharedList struct {
	List    models.List     `json:"list"`
	CanEdit bool            `json:"can_edit"`
	Role    permission.Role `json:"role"`
}

type ListsResponse struct {
	Owned  []models.List `json:"owned"`
	Shared []SharedList  `json:"shared"`
}

type ListDetail struct {
	List models.List     `json:"list"`
	Role permission.Role `json:"role"`
}

// ListSnapshot is the document written by a list export.
type ListSnapshot struct {
	List       models.List          `json:"list"`
	Items      []models.GroceryItem `json:"items"`
	ExportedAt time.Time            `json:"exported_at"`
	ExportedBy uuid.UUID            `json:"exported_by"`
}

type ExportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
