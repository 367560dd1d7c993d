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
)

// resolveAccess loads the list and the caller's role on it. Ownership and
// membership are looked up independently and combined by permission.Resolve.
// On postgres a list the caller cannot see is reported as not found.
func resolveAccess(tx *gorm.DB, userID, listID uuid.UUID) (models.List, permission.Role, error) {
	var list models.List
	if err := tx.Take(&list, "id = ?", listID).Error; err != nil {
		if database.IsNotFound(err) {
			return list, permission.RoleNone, apperrors.NotFound("List")
		}
		return list, permission.RoleNone, fmt.Errorf("failed to load list: %w", err)
	}

	var membership *permission.Membership
	if list.OwnerID != userID {
		var m models.ListMember
		err := tx.Select("can_edit").Take(&m, "list_id = ? AND user_id = ?", listID, userID).Error
		switch {
		case err == nil:
			membership = &permission.Membership{CanEdit: m.CanEdit}
		case !database.IsNotFound(err):
			return list, permission.RoleNone, fmt.Errorf("failed to load membership: %w", err)
		}
	}

	return list, permission.Resolve(userID, list.OwnerID, membership), nil
}

// authorize resolves the caller's role and fails unless it allows action.
func authorize(tx *gorm.DB, userID, listID uuid.UUID, action permission.Action) (models.List, permission.Role, error) {
	list, role, err := resolveAccess(tx, userID, listID)
	if err != nil {
		return list, role, err
	}
	if err := permission.Authorize(role, action); err != nil {
		return list, role, err
	}
	return list, role, nil
}

// writeError turns a write the row policies rejected into a 403 instead of
// letting it surface as an internal error.
func writeError(op string, err error) error {
	if database.IsPolicyViolation(err) {
		return apperrors.Forbidden("You don't have permission to modify items in this list")
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// notifier publishes change events after commit. Failures are logged and
// never fail the request.
type notifier struct {
	events realtime.Publisher
	log    logrus.FieldLogger
}

func newNotifier(events realtime.Publisher, log logrus.FieldLogger) notifier {
	if events == nil {
		events = realtime.NopPublisher{}
	}
	return notifier{events: events, log: log}
}

func (n notifier) publish(ctx context.Context, entity, action string, id, listID uuid.UUID) {
	ev := realtime.NewEvent(entity, action, id, listID)
	if err := n.events.Publish(ctx, listID, ev); err != nil {
		n.log.WithFields(logrus.Fields{
			"list_id": listID,
			"event":   ev.Type,
		}).WithError(err).Warn("Failed to publish list event")
	}
}
