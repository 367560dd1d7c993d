package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/testhelpers"
	"github.com/pageza/grocerylist/backend/internal/types"
)

// dialEvents opens the list's event stream as userID and waits until the
// subscription is registered.
func dialEvents(t *testing.T, ctx context.Context, env *TestEnv, listID, userID uuid.UUID) *ws.Conn {
	t.Helper()
	srv := httptest.NewServer(env.Router)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+testhelpers.CreateToken(t, userID))
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/lists/" + listID.String() + "/events"

	conn, _, err := ws.Dial(ctx, url, &ws.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	require.Eventually(t, func() bool {
		return env.Broker.Subscribers(listID) == 1
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, ctx context.Context, conn *ws.Conn) realtime.Event {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var ev realtime.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestEventsStreamItemChanges(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testhelpers.SeedList(t, env.DB, "EVNT01")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialEvents(t, ctx, env, f.List.ID, f.Viewer)

	w := env.Do(t, http.MethodPost, "/api/groceries", f.Editor, types.CreateItemRequest{Name: "Apples", ListID: f.List.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[models.GroceryItem](t, w)

	ev := readEvent(t, ctx, conn)
	assert.Equal(t, "item_created", ev.Type)
	assert.Equal(t, item.ID.String(), ev.ID)
	assert.Equal(t, f.List.ID.String(), ev.ListID)

	require.NoError(t, conn.Close(ws.StatusNormalClosure, ""))
	require.Eventually(t, func() bool {
		return env.Broker.Subscribers(f.List.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventsStreamClosesWhenMemberRemoved(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testhelpers.SeedList(t, env.DB, "EVNT03")
	base := "/api/lists/" + f.List.ID.String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialEvents(t, ctx, env, f.List.ID, f.Viewer)

	w := env.Do(t, http.MethodDelete, base+"/members/"+f.Viewer.String(), f.Owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ev := readEvent(t, ctx, conn)
	assert.Equal(t, "member_deleted", ev.Type)
	assert.Equal(t, f.Viewer.String(), ev.ID)

	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, ws.StatusPolicyViolation, ws.CloseStatus(err))

	require.Eventually(t, func() bool {
		return env.Broker.Subscribers(f.List.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)

	w = env.Do(t, http.MethodPost, "/api/groceries", f.Editor, types.CreateItemRequest{Name: "Secret", ListID: f.List.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestEventsStreamSurvivesOtherMemberRemoval(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testhelpers.SeedList(t, env.DB, "EVNT04")
	base := "/api/lists/" + f.List.ID.String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialEvents(t, ctx, env, f.List.ID, f.Viewer)

	w := env.Do(t, http.MethodDelete, base+"/members/"+f.Editor.String(), f.Owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, f.Editor.String(), readEvent(t, ctx, conn).ID)

	w = env.Do(t, http.MethodPost, "/api/groceries", f.Owner, types.CreateItemRequest{Name: "Pears", ListID: f.List.ID.String()})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "item_created", readEvent(t, ctx, conn).Type)
}

func TestEventsStreamClosesWhenListDeleted(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testhelpers.SeedList(t, env.DB, "EVNT05")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialEvents(t, ctx, env, f.List.ID, f.Editor)

	w := env.Do(t, http.MethodDelete, "/api/lists/"+f.List.ID.String(), f.Owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "list_deleted", readEvent(t, ctx, conn).Type)
	_, _, err := conn.Read(ctx)
	assert.Equal(t, ws.StatusPolicyViolation, ws.CloseStatus(err))
}

func TestEventsRequireReadAccess(t *testing.T) {
	env := setupTestRouter(t, nil)
	f := testhelpers.SeedList(t, env.DB, "EVNT02")

	w := env.Do(t, http.MethodGet, "/api/lists/"+f.List.ID.String()+"/events", f.Outsider, nil)
	requireError(t, w, http.StatusForbidden, "authorization_error", "")
	assert.Zero(t, env.Broker.Subscribers(f.List.ID))

	w = env.Do(t, http.MethodGet, "/api/lists/"+f.List.ID.String()+"/events", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOriginPatterns(t *testing.T) {
	got := originPatterns([]string{"http://localhost:3000", "https://lists.example.com", "not a url", "*"})
	assert.Equal(t, []string{"localhost:3000", "lists.example.com", "*"}, got)
}
