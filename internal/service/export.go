package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
	"github.com/pageza/grocerylist/backend/internal/types"
)

// ObjectStore is the part of the S3 client exports need.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ExportService writes list snapshots to object storage and hands back a
// short-lived download link.
type ExportService struct {
	scope *database.Scope
	store ObjectStore
	ttl   time.Duration
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewExportService accepts a nil store; exports then report unavailable.
func NewExportService(scope *database.Scope, store ObjectStore, ttl time.Duration, log logrus.FieldLogger) *ExportService {
	return &ExportService{
		scope: scope,
		store: store,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

func exportKey(listID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("exports/%s/%d.json", listID, at.Unix())
}

// Export snapshots a list the caller can read.
func (s *ExportService) Export(ctx context.Context, userID, listID uuid.UUID) (*types.ExportResponse, error) {
	if s.store == nil {
		return nil, apperrors.Unavailable("List export is not configured")
	}

	snapshot := types.ListSnapshot{Items: []models.GroceryItem{}, ExportedBy: userID}
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		list, _, err := authorize(tx, userID, listID, permission.ActionRead)
		if err != nil {
			return err
		}
		snapshot.List = list
		if err := tx.Where("list_id = ?", listID).Order("created_at ASC").Find(&snapshot.Items).Error; err != nil {
			return fmt.Errorf("failed to load items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	snapshot.ExportedAt = s.now().UTC()
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := exportKey(listID, snapshot.ExportedAt)
	if err := s.store.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}
	url, err := s.store.GeneratePresignedURL(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}

	s.log.WithFields(logrus.Fields{"list_id": listID, "key": key}).Info("List exported")
	return &types.ExportResponse{
		URL:       url,
		Key:       key,
		ExpiresAt: snapshot.ExportedAt.Add(s.ttl),
	}, nil
}
