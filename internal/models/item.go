package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemStatus is either StatusToBuy or StatusPurchased. Both transitions are
// allowed.
type ItemStatus string

const (
	StatusToBuy     ItemStatus = "toBuy"
	StatusPurchased ItemStatus = "purchased"
)

func (s ItemStatus) Valid() bool {
	return s == StatusToBuy || s == StatusPurchased
}

type GroceryItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"type:text;not null" json:"name"`
	Status    ItemStatus `gorm:"type:varchar(16);not null;default:toBuy;index" json:"status"`
	ListID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"list_id"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (GroceryItem) TableName() string {
	return "grocery_items"
}

func (i *GroceryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusToBuy
	}
	return nil
}
