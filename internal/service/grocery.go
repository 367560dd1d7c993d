package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/validation"
)

const invalidStatusMessage = "Status must be either toBuy or purchased"

// GroceryService handles items within a list.
type GroceryService struct {
	scope *database.Scope
	notifier
}

func NewGroceryService(scope *database.Scope, events realtime.Publisher, log logrus.FieldLogger) *GroceryService {
	return &GroceryService{
		scope:    scope,
		notifier: newNotifier(events, log),
	}
}

// ParseStatus maps a query or body value to an item status. Empty means
// toBuy.
func ParseStatus(raw string) (models.ItemStatus, error) {
	if raw == "" {
		return models.StatusToBuy, nil
	}
	status := models.ItemStatus(raw)
	if !status.Valid() {
		return "", apperrors.Validation(invalidStatusMessage)
	}
	return status, nil
}

// ListItems returns the items of a list with the given status, newest first.
func (s *GroceryService) ListItems(ctx context.Context, userID, listID uuid.UUID, status models.ItemStatus) ([]models.GroceryItem, error) {
	if !status.Valid() {
		return nil, apperrors.Validation(invalidStatusMessage)
	}

	items := []models.GroceryItem{}
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		if _, _, err := authorize(tx, userID, listID, permission.ActionRead); err != nil {
			return err
		}
		if err := tx.Where("list_id = ? AND status = ?", listID, status).
			Order("created_at DESC").
			Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem adds an item to a list the caller can write to.
func (s *GroceryService) CreateItem(ctx context.Context, userID, listID uuid.UUID, name string) (*models.GroceryItem, error) {
	res := validation.ValidateItemName(name)
	if !res.IsValid {
		return nil, apperrors.Validation(res.Error)
	}

	item := models.GroceryItem{
		Name:      res.SanitizedValue,
		Status:    models.StatusToBuy,
		ListID:    listID,
		CreatedBy: userID,
	}
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		if _, _, err := authorize(tx, userID, listID, permission.ActionWrite); err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return writeError("create item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EntityItem, realtime.ActionCreated, item.ID, listID)
	return &item, nil
}

// UpdateStatus moves an item between toBuy and purchased. Either direction
// is allowed.
func (s *GroceryService) UpdateStatus(ctx context.Context, userID, listID, itemID uuid.UUID, status models.ItemStatus) (*models.GroceryItem, error) {
	if !status.Valid() {
		return nil, apperrors.Validation(invalidStatusMessage)
	}

	var item models.GroceryItem
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		if _, _, err := authorize(tx, userID, listID, permission.ActionWrite); err != nil {
			return err
		}

		res := tx.Model(&models.GroceryItem{}).
			Where("id = ? AND list_id = ?", itemID, listID).
			Update("status", status)
		if res.Error != nil {
			return writeError("update item", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Item")
		}

		if err := tx.Take(&item, "id = ?", itemID).Error; err != nil {
			return fmt.Errorf("failed to reload item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EntityItem, realtime.ActionUpdated, itemID, listID)
	return &item, nil
}

// DeleteItem removes an item. A concurrent delete of the same item surfaces
// as not found.
func (s *GroceryService) DeleteItem(ctx context.Context, userID, listID, itemID uuid.UUID) error {
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		if _, _, err := authorize(tx, userID, listID, permission.ActionWrite); err != nil {
			return err
		}

		res := tx.Where("id = ? AND list_id = ?", itemID, listID).Delete(&models.GroceryItem{})
		if res.Error != nil {
			return writeError("delete item", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Item")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, realtime.EntityItem, realtime.ActionDeleted, itemID, listID)
	return nil
}
