package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/grocerylist/backend/internal/database"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/middleware"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/service"
	"github.com/pageza/grocerylist/backend/internal/testhelpers"
	"github.com/pageza/grocerylist/backend/internal/types"
)

const testCookieName = "sb-access-token"

// stubProvider answers every completion with reply, or fails with err.
type stubProvider struct {
	reply string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, _ []types.ChatMessage) (types.ChatMessage, error) {
	p.calls++
	if p.err != nil {
		return types.ChatMessage{}, p.err
	}
	return types.ChatMessage{Role: types.ChatRoleAssistant, Content: p.reply}, nil
}

// TestEnv is a router over a sqlite database wired with the real services.
type TestEnv struct {
	Router *gin.Engine
	DB     *gorm.DB
	Broker *realtime.MemoryBroker
}

// setupTestRouter builds the full route table. provider may be nil for
// fallback-only chat.
func setupTestRouter(t *testing.T, provider service.Provider) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	log := logging.Discard()
	broker := realtime.NewMemoryBroker()
	scope := database.NewScope(db, "")

	chat := service.NewChatService(provider, false, log)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(log))
	RegisterRoutes(router, Dependencies{
		Auth:           service.NewAuthService(testhelpers.TestJWTSecret, ""),
		Lists:          service.NewListService(scope, broker, log),
		Groceries:      service.NewGroceryService(scope, broker, log),
		Chat:           chat,
		Exports:        service.NewExportService(scope, nil, 0, log),
		Broker:         broker,
		Health:         NewHealthHandler(db, nil, chat.ProviderName()),
		CookieName:     testCookieName,
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	return &TestEnv{Router: router, DB: db, Broker: broker}
}

// Do sends an optionally authenticated JSON request. A nil userID sends
// no token.
func (e *TestEnv) Do(t *testing.T, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+testhelpers.CreateToken(t, userID))
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	resp := decode[middleware.ErrorResponse](t, w)
	require.Equal(t, code, resp.Error)
	if message != "" {
		require.Equal(t, message, resp.Message)
	}
}
