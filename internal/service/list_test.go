package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/permission"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/testhelpers"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, ev realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func setupListService(t *testing.T) (*ListService, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	events := &recordingPublisher{}
	return NewListService(database.NewScope(db, ""), events, logging.Discard()), db, events
}

func stubShareCodes(t *testing.T, codes ...string) {
	t.Helper()
	orig := newShareCode
	i := 0
	newShareCode = func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
	t.Cleanup(func() { newShareCode = orig })
}

var shareCodeFormat = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestRandomShareCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomShareCode()
		require.NoError(t, err)
		assert.Regexp(t, shareCodeFormat, code)
	}
}

func TestListService_Create(t *testing.T) {
	svc, _, _ := setupListService(t)
	ctx := context.Background()
	owner := uuid.New()

	list, err := svc.Create(ctx, owner, "  Milk & Eggs!  ")
	require.NoError(t, err)
	assert.Equal(t, "Milk &amp; Eggs!", list.Name)
	assert.Equal(t, owner, list.OwnerID)
	assert.Regexp(t, shareCodeFormat, list.ShareCode)
	assert.NotEqual(t, uuid.Nil, list.ID)

	_, err = svc.Create(ctx, owner, "<b>party</b>")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = svc.Create(ctx, owner, "   ")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestListService_CreateRetriesShareCodeCollision(t *testing.T) {
	svc, db, _ := setupListService(t)
	ctx := context.Background()
	testhelpers.SeedList(t, db, "AB12CD")

	t.Run("retries with a new code", func(t *testing.T) {
		stubShareCodes(t, "AB12CD", "AB12CD", "ZZ99ZZ")
		list, err := svc.Create(ctx, uuid.New(), "Party")
		require.NoError(t, err)
		assert.Equal(t, "ZZ99ZZ", list.ShareCode)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		stubShareCodes(t, "AB12CD")
		_, err := svc.Create(ctx, uuid.New(), "Party")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindInternal))
		assert.ErrorIs(t, err, errShareCodeExhausted)
	})
}

func TestListService_ListForUser(t *testing.T) {
	svc, db, _ := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")

	resp, err := svc.ListForUser(ctx, f.Owner)
	require.NoError(t, err)
	require.Len(t, resp.Owned, 1)
	assert.Equal(t, f.List.ID, resp.Owned[0].ID)
	assert.Empty(t, resp.Shared)

	resp, err = svc.ListForUser(ctx, f.Editor)
	require.NoError(t, err)
	assert.Empty(t, resp.Owned)
	require.Len(t, resp.Shared, 1)
	assert.True(t, resp.Shared[0].CanEdit)
	assert.Equal(t, permission.RoleEditor, resp.Shared[0].Role)

	resp, err = svc.ListForUser(ctx, f.Viewer)
	require.NoError(t, err)
	require.Len(t, resp.Shared, 1)
	assert.Equal(t, permission.RoleViewer, resp.Shared[0].Role)

	resp, err = svc.ListForUser(ctx, f.Outsider)
	require.NoError(t, err)
	assert.NotNil(t, resp.Owned)
	assert.NotNil(t, resp.Shared)
	assert.Empty(t, resp.Owned)
	assert.Empty(t, resp.Shared)
}

func TestListService_Get(t *testing.T) {
	svc, db, _ := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")

	tests := []struct {
		name string
		user uuid.UUID
		role permission.Role
		kind apperrors.Kind
	}{
		{"owner", f.Owner, permission.RoleOwner, -1},
		{"editor", f.Editor, permission.RoleEditor, -1},
		{"viewer", f.Viewer, permission.RoleViewer, -1},
		{"outsider", f.Outsider, permission.RoleNone, apperrors.KindAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail, err := svc.Get(ctx, tt.user, f.List.ID)
			if tt.kind >= 0 {
				require.Error(t, err)
				assert.Equal(t, tt.kind, apperrors.KindOf(err))
				assert.Nil(t, detail)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, detail.Role)
			assert.Equal(t, f.List.ID, detail.List.ID)
		})
	}

	_, err := svc.Get(ctx, f.Owner, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestListService_Permissions(t *testing.T) {
	svc, db, _ := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")

	d, err := svc.Permissions(ctx, f.Editor, f.List.ID)
	require.NoError(t, err)
	assert.Equal(t, permission.Decide(permission.RoleEditor), *d)

	d, err = svc.Permissions(ctx, f.Outsider, f.List.ID)
	require.NoError(t, err)
	assert.False(t, d.CanRead)
	assert.False(t, d.CanWrite)
}

func TestListService_JoinTwice(t *testing.T) {
	svc, db, events := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")
	joiner := uuid.New()

	member, err := svc.Join(ctx, joiner, "ab12cd")
	require.NoError(t, err)
	assert.Equal(t, f.List.ID, member.ListID)
	assert.False(t, member.CanEdit)

	_, err = svc.Join(ctx, joiner, "AB12CD")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	assert.Equal(t, "You are already a member of this list", apperrors.Public(err))

	var rows []models.ListMember
	require.NoError(t, db.Where("list_id = ? AND user_id = ?", f.List.ID, joiner).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, member.ID, rows[0].ID)
	assert.False(t, rows[0].CanEdit)

	assert.Equal(t, []string{"member_created"}, events.eventTypes())
}

func TestListService_JoinErrors(t *testing.T) {
	svc, db, _ := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")

	_, err := svc.Join(ctx, f.Owner, "AB12CD")
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	assert.Equal(t, "You are the owner of this list", apperrors.Public(err))

	_, err = svc.Join(ctx, f.Viewer, "AB12CD")
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	_, err = svc.Join(ctx, uuid.New(), "ZZZZZZ")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = svc.Join(ctx, uuid.New(), "AB-12")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestListService_UpdateMemberPermission(t *testing.T) {
	svc, db, events := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")

	member, err := svc.UpdateMemberPermission(ctx, f.Owner, f.List.ID, f.Viewer, true)
	require.NoError(t, err)
	assert.True(t, member.CanEdit)
	assert.Equal(t, f.Viewer, member.UserID)

	d, err := svc.Permissions(ctx, f.Viewer, f.List.ID)
	require.NoError(t, err)
	assert.True(t, d.CanWrite)

	_, err = svc.UpdateMemberPermission(ctx, f.Editor, f.List.ID, f.Viewer, false)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))
	assert.Equal(t, "Only the list owner can update user permissions", apperrors.Public(err))

	_, err = svc.UpdateMemberPermission(ctx, f.Owner, f.List.ID, f.Outsider, true)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	assert.Equal(t, []string{"member_updated"}, events.eventTypes())
}

func TestListService_RemoveMember(t *testing.T) {
	svc, db, _ := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")

	err := svc.RemoveMember(ctx, f.Viewer, f.List.ID, f.Editor)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	err = svc.RemoveMember(ctx, f.Outsider, f.List.ID, f.Viewer)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))

	require.NoError(t, svc.RemoveMember(ctx, f.Viewer, f.List.ID, f.Viewer))
	require.NoError(t, svc.RemoveMember(ctx, f.Owner, f.List.ID, f.Editor))

	members, err := svc.Members(ctx, f.Owner, f.List.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	err = svc.RemoveMember(ctx, f.Owner, f.List.ID, f.Editor)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestListService_Delete(t *testing.T) {
	svc, db, events := setupListService(t)
	ctx := context.Background()
	f := testhelpers.SeedList(t, db, "AB12CD")
	testhelpers.SeedItem(t, db, f.List.ID, f.Owner, "Bread", models.StatusToBuy)

	err := svc.Delete(ctx, f.Editor, f.List.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindAuthorization))
	assert.Equal(t, "Only the list owner can perform this action", apperrors.Public(err))

	require.NoError(t, svc.Delete(ctx, f.Owner, f.List.ID))

	var count int64
	require.NoError(t, db.Model(&models.GroceryItem{}).Where("list_id = ?", f.List.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.ListMember{}).Where("list_id = ?", f.List.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Get(ctx, f.Owner, f.List.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, []string{"list_deleted"}, events.eventTypes())
}
