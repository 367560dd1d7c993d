package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/types"
	"github.com/pageza/grocerylist/backend/internal/validation"
)

const (
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shareCodeAttempts = 5
)

var errShareCodeExhausted = errors.New("could not allocate a unique share code")

// newShareCode is replaced in tests to force collisions.
var newShareCode = randomShareCode

func randomShareCode() (string, error) {
	code := make([]byte, validation.ShareCodeLength)
	alphabetSize := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate share code: %w", err)
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ListService manages lists and their memberships.
type ListService struct {
	scope *database.Scope
	notifier
	log logrus.FieldLogger
}

func NewListService(scope *database.Scope, events realtime.Publisher, log logrus.FieldLogger) *ListService {
	return &ListService{
		scope:    scope,
		notifier: newNotifier(events, log),
		log:      log,
	}
}

// Create stores a new list owned by userID with a fresh share code. A code
// collision is retried with a new code.
func (s *ListService) Create(ctx context.Context, userID uuid.UUID, name string) (*models.List, error) {
	res := validation.ValidateListName(name)
	if !res.IsValid {
		return nil, apperrors.Validation(res.Error)
	}

	for attempt := 1; attempt <= shareCodeAttempts; attempt++ {
		code, err := newShareCode()
		if err != nil {
			return nil, err
		}

		list := &models.List{Name: res.SanitizedValue, ShareCode: code, OwnerID: userID}
		err = s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
			return tx.Create(list).Error
		})
		if err == nil {
			s.log.WithFields(logrus.Fields{"list_id": list.ID, "user_id": userID}).Info("List created")
			return list, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, writeError("create list", err)
		}
		s.log.WithField("attempt", attempt).Debug("Share code collision, retrying")
	}

	return nil, apperrors.Internal(errShareCodeExhausted)
}

// ListForUser returns the lists userID owns and the lists shared with them.
// The two reads are independent and run concurrently.
func (s *ListService) ListForUser(ctx context.Context, userID uuid.UUID) (*types.ListsResponse, error) {
	resp := &types.ListsResponse{
		Owned:  []models.List{},
		Shared: []types.SharedList{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.scope.AsUser(gctx, userID, func(tx *gorm.DB) error {
			if err := tx.Where("owner_id = ?", userID).Order("created_at DESC").Find(&resp.Owned).Error; err != nil {
				return fmt.Errorf("failed to load owned lists: %w", err)
			}
			return nil
		})
	})

	g.Go(func() error {
		return s.scope.AsUser(gctx, userID, func(tx *gorm.DB) error {
			var memberships []models.ListMember
			if err := tx.Where("user_id = ?", userID).Order("created_at DESC").Find(&memberships).Error; err != nil {
				return fmt.Errorf("failed to load memberships: %w", err)
			}
			if len(memberships) == 0 {
				return nil
			}

			ids := make([]uuid.UUID, 0, len(memberships))
			for _, m := range memberships {
				ids = append(ids, m.ListID)
			}
			var lists []models.List
			if err := tx.Where("id IN ?", ids).Find(&lists).Error; err != nil {
				return fmt.Errorf("failed to load shared lists: %w", err)
			}
			byID := make(map[uuid.UUID]models.List, len(lists))
			for _, l := range lists {
				byID[l.ID] = l
			}

			for _, m := range memberships {
				l, ok := byID[m.ListID]
				if !ok {
					continue
				}
				resp.Shared = append(resp.Shared, types.SharedList{
					List:    l,
					CanEdit: m.CanEdit,
					Role:    permission.RoleFor(m.CanEdit),
				})
			}
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Get returns a list the caller can read along with their role.
func (s *ListService) Get(ctx context.Context, userID, listID uuid.UUID) (*types.ListDetail, error) {
	var detail types.ListDetail
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		list, role, err := authorize(tx, userID, listID, permission.ActionRead)
		if err != nil {
			return err
		}
		detail = types.ListDetail{List: list, Role: role}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// Permissions reports the caller's access without failing on a lack of it.
func (s *ListService) Permissions(ctx context.Context, userID, listID uuid.UUID) (*permission.Decision, error) {
	var decision permission.Decision
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		_, role, err := resolveAccess(tx, userID, listID)
		if err != nil {
			return err
		}
		decision = permission.Decide(role)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// Delete removes a list with its items and memberships. Owner only.
func (s *ListService) Delete(ctx context.Context, userID, listID uuid.UUID) error {
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		if _, _, err := authorize(tx, userID, listID, permission.ActionManage); err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Delete(&models.GroceryItem{}).Error; err != nil {
			return writeError("delete list items", err)
		}
		if err := tx.Where("list_id = ?", listID).Delete(&models.ListMember{}).Error; err != nil {
			return writeError("delete list members", err)
		}
		res := tx.Delete(&models.List{}, "id = ?", listID)
		if res.Error != nil {
			return writeError("delete list", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("List")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, realtime.EntityList, realtime.ActionDeleted, listID, listID)
	return nil
}

// Join redeems a share code for a viewer membership.
func (s *ListService) Join(ctx context.Context, userID uuid.UUID, shareCode string) (*models.ListMember, error) {
	res := validation.ValidateShareCode(shareCode)
	if !res.IsValid {
		return nil, apperrors.Validation(res.Error)
	}

	var member models.ListMember
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		target, err := s.scope.LookupShareCode(tx, userID, res.SanitizedValue)
		if err != nil {
			if database.IsNotFound(err) {
				return apperrors.NotFound("List")
			}
			return fmt.Errorf("failed to look up share code: %w", err)
		}
		if target.OwnerID == userID {
			return apperrors.Conflict("You are the owner of this list")
		}

		var existing int64
		if err := tx.Model(&models.ListMember{}).
			Where("list_id = ? AND user_id = ?", target.ListID, userID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}
		if existing > 0 {
			return apperrors.Conflict("You are already a member of this list")
		}

		member = models.ListMember{ListID: target.ListID, UserID: userID, CanEdit: false}
		if err := tx.Create(&member).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.Conflict("You are already a member of this list")
			}
			return writeError("join list", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EntityMember, realtime.ActionCreated, userID, member.ListID)
	return &member, nil
}

// Members lists the memberships of a list the caller can read.
func (s *ListService) Members(ctx context.Context, userID, listID uuid.UUID) ([]models.ListMember, error) {
	members := []models.ListMember{}
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		if _, _, err := authorize(tx, userID, listID, permission.ActionRead); err != nil {
			return err
		}
		if err := tx.Where("list_id = ?", listID).Order("created_at ASC").Find(&members).Error; err != nil {
			return fmt.Errorf("failed to load members: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// UpdateMemberPermission grants or revokes a member's edit capability.
// Owner only.
func (s *ListService) UpdateMemberPermission(ctx context.Context, userID, listID, memberID uuid.UUID, canEdit bool) (*models.ListMember, error) {
	var member models.ListMember
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		_, role, err := resolveAccess(tx, userID, listID)
		if err != nil {
			return err
		}
		if !role.IsOwner() {
			return apperrors.Forbidden("Only the list owner can update user permissions")
		}

		res := tx.Model(&models.ListMember{}).
			Where("list_id = ? AND user_id = ?", listID, memberID).
			Update("can_edit", canEdit)
		if res.Error != nil {
			return writeError("update member", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Member")
		}

		if err := tx.Take(&member, "list_id = ? AND user_id = ?", listID, memberID).Error; err != nil {
			return fmt.Errorf("failed to reload member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.EntityMember, realtime.ActionUpdated, memberID, listID)
	return &member, nil
}

// RemoveMember deletes a membership. Members may remove themselves; only
// the owner may remove anyone else.
func (s *ListService) RemoveMember(ctx context.Context, userID, listID, memberID uuid.UUID) error {
	err := s.scope.AsUser(ctx, userID, func(tx *gorm.DB) error {
		_, role, err := resolveAccess(tx, userID, listID)
		if err != nil {
			return err
		}
		leaving := memberID == userID && role.CanRead() && !role.IsOwner()
		if !leaving && !role.IsOwner() {
			if !role.CanRead() {
				return permission.Authorize(role, permission.ActionRead)
			}
			return apperrors.Forbidden("Only the list owner can remove other members")
		}

		res := tx.Where("list_id = ? AND user_id = ?", listID, memberID).Delete(&models.ListMember{})
		if res.Error != nil {
			return writeError("remove member", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("Member")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, realtime.EntityMember, realtime.ActionDeleted, memberID, listID)
	return nil
}
