package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is a named grocery list. ShareCode is assigned once at creation.
type List struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	ShareCode string    `gorm:"type:varchar(6);not null;uniqueIndex" json:"share_code"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	Items   []GroceryItem `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
	Members []ListMember  `gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE" json:"-"`
}

func (List) TableName() string {
	return "grocery_lists"
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ListMember grants a non-owner access to a list. There is at most one row
// per (list, user) and never one for the owner.
type ListMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_list_members_list_user" json:"list_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_list_members_list_user;index" json:"user_id"`
	CanEdit   bool      `gorm:"not null;default:false" json:"can_edit"`
	CreatedAt time.Time `json:"created_at"`
}

func (ListMember) TableName() string {
	return "list_members"
}

func (m *ListMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
