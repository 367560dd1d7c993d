package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Scope runs work on behalf of one user. On postgres each call is a
// transaction that publishes the user id to the row-level policies and,
// when a role is configured, drops to that role so the policies apply.
type Scope struct {
	db   *gorm.DB
	role string
}

func NewScope(db *gorm.DB, rlsRole string) *Scope {
	return &Scope{db: db, role: rlsRole}
}

// DB returns the unscoped handle.
func (s *Scope) DB() *gorm.DB {
	return s.db
}

func (s *Scope) Postgres() bool {
	return s.db.Dialector.Name() == DriverPostgres
}

// AsUser runs fn in a transaction scoped to userID. The application-level
// access check and the write it guards see the same snapshot.
func (s *Scope) AsUser(ctx context.Context, userID uuid.UUID, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.Postgres() {
			if err := tx.Exec("SELECT set_config('app.current_user_id', ?, true)", userID.String()).Error; err != nil {
				return fmt.Errorf("set current user: %w", err)
			}
			if s.role != "" {
				if err := tx.Exec("SET LOCAL ROLE " + pq.QuoteIdentifier(s.role)).Error; err != nil {
					return fmt.Errorf("set role: %w", err)
				}
			}
		}
		return fn(tx)
	})
}

// ShareCodeTarget is the list a share code points at.
type ShareCodeTarget struct {
	ListID  uuid.UUID
	OwnerID uuid.UUID
}

// LookupShareCode resolves a normalized share code inside a user-scoped
// transaction. On postgres the caller cannot see the list before joining,
// so the lookup goes through a security definer function and only reports
// whether the caller owns it. It returns gorm.ErrRecordNotFound for an
// unknown code.
func (s *Scope) LookupShareCode(tx *gorm.DB, userID uuid.UUID, code string) (ShareCodeTarget, error) {
	if !s.Postgres() {
		var target ShareCodeTarget
		err := tx.Table("grocery_lists").
			Select("id AS list_id, owner_id").
			Where("share_code = ?", code).
			Take(&target).Error
		return target, err
	}

	var row struct {
		ListID  *uuid.UUID
		IsOwner bool
	}
	err := tx.Raw("SELECT list_id_for_share_code(@code) AS list_id, is_list_owner(list_id_for_share_code(@code)) AS is_owner",
		map[string]any{"code": code}).Scan(&row).Error
	if err != nil {
		return ShareCodeTarget{}, err
	}
	if row.ListID == nil {
		return ShareCodeTarget{}, gorm.ErrRecordNotFound
	}

	target := ShareCodeTarget{ListID: *row.ListID}
	if row.IsOwner {
		target.OwnerID = userID
	}
	return target, nil
}
