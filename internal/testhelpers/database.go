package testhelpers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/models"
)

// SetupTestDatabase opens a migrated sqlite database in a temp directory.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "grocerylist_test.db"), nil)
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(context.Background(), db, logging.Discard()), "failed to migrate test database")

	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return db
}

// Fixture is a list with one user in every role.
type Fixture struct {
	List     models.List
	Owner    uuid.UUID
	Editor   uuid.UUID
	Viewer   uuid.UUID
	Outsider uuid.UUID
}

// SeedList inserts a list owned by a fresh user, plus an editor and a
// viewer membership, bypassing the services.
func SeedList(t *testing.T, db *gorm.DB, shareCode string) Fixture {
	t.Helper()

	f := Fixture{
		Owner:    uuid.New(),
		Editor:   uuid.New(),
		Viewer:   uuid.New(),
		Outsider: uuid.New(),
	}
	f.List = models.List{Name: "Weekly shop", ShareCode: shareCode, OwnerID: f.Owner}
	require.NoError(t, db.Create(&f.List).Error)
	require.NoError(t, db.Create(&models.ListMember{ListID: f.List.ID, UserID: f.Editor, CanEdit: true}).Error)
	require.NoError(t, db.Create(&models.ListMember{ListID: f.List.ID, UserID: f.Viewer, CanEdit: false}).Error)

	return f
}

// SeedItem inserts an item directly.
func SeedItem(t *testing.T, db *gorm.DB, listID, createdBy uuid.UUID, name string, status models.ItemStatus) models.GroceryItem {
	t.Helper()

	item := models.GroceryItem{Name: name, ListID: listID, CreatedBy: createdBy, Status: status}
	require.NoError(t, db.Create(&item).Error)
	return item
}
