package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/api"
	"github.com/pageza/grocerylist/backend/internal/logging"
	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/router"
	"github.com/pageza/grocerylist/backend/internal/service"
	"github.com/pageza/grocerylist/backend/internal/testdb"
	"github.com/pageza/grocerylist/backend/internal/testhelpers"
	"github.com/pageza/grocerylist/backend/internal/types"
)

func setupRouter(t *testing.T, providerURL string) (*gin.Engine, *testdb.TestDB) {
	gin.SetMode(gin.TestMode)
	td := testdb.SetupTestDB(t)
	log := logging.Discard()
	scope := td.Scope()
	broker := realtime.NewMemoryBroker()

	llm := service.NewLLMService(service.LLMConfig{
		APIKey:  "dummy",
		APIURL:  providerURL,
		Model:   "gpt-3.5-turbo",
		Timeout: 5 * time.Second,
	}, nil, log)
	chat := service.NewChatService(llm, true, log)

	return router.SetupRouter(log, api.Dependencies{
		Auth:           service.NewAuthService(testhelpers.TestJWTSecret, ""),
		Lists:          service.NewListService(scope, broker, log),
		Groceries:      service.NewGroceryService(scope, broker, log),
		Chat:           chat,
		Exports:        service.NewExportService(scope, nil, 0, log),
		Broker:         broker,
		Health:         api.NewHealthHandler(td.DB, nil, chat.ProviderName()),
		AllowedOrigins: []string{"http://localhost:3000"},
	}), td
}

func do(t *testing.T, r *gin.Engine, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+testhelpers.CreateToken(t, userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int, step string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("%s: got %d, want %d: %s", step, w.Code, status, w.Body.String())
	}
}

func TestIntegrationShareJoinEditChat(t *testing.T) {
	var providerStatus atomic.Int32
	providerStatus.Store(http.StatusOK)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := int(providerStatus.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			fmt.Fprint(w, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"Try a veggie stir fry."}}]}`)
	}))
	defer ts.Close()

	r, td := setupRouter(t, ts.URL)
	owner, friend, stranger := uuid.New(), uuid.New(), uuid.New()

	w := do(t, r, http.MethodPost, "/api/lists", owner, types.CreateListRequest{Name: "Family"})
	expect(t, w, http.StatusCreated, "create list")
	var list models.List
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	listPath := "/api/lists/" + list.ID.String()

	w = do(t, r, http.MethodGet, listPath, stranger, nil)
	expect(t, w, http.StatusNotFound, "stranger reads list")

	w = do(t, r, http.MethodPost, "/api/memberships", friend, types.JoinListRequest{ShareCode: list.ShareCode})
	expect(t, w, http.StatusCreated, "friend joins")

	w = do(t, r, http.MethodPost, "/api/groceries", friend, types.CreateItemRequest{Name: "Tofu", ListID: list.ID.String()})
	expect(t, w, http.StatusForbidden, "viewer adds item")

	w = do(t, r, http.MethodPut, listPath+"/share", owner, map[string]any{"user_id": friend, "can_edit": true})
	expect(t, w, http.StatusOK, "owner grants edit")

	w = do(t, r, http.MethodPost, "/api/groceries", friend, types.CreateItemRequest{Name: "Tofu", ListID: list.ID.String()})
	expect(t, w, http.StatusCreated, "editor adds item")
	var item models.GroceryItem
	if err := json.Unmarshal(w.Body.Bytes(), &item); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}

	w = do(t, r, http.MethodPut, "/api/groceries", owner, types.UpdateItemRequest{ID: item.ID.String(), Status: "purchased", ListID: list.ID.String()})
	expect(t, w, http.StatusOK, "owner checks off item")

	w = do(t, r, http.MethodGet, "/api/groceries?list_id="+list.ID.String(), stranger, nil)
	expect(t, w, http.StatusNotFound, "stranger reads items")

	chatReq := types.ChatRequest{PurchasedItems: []types.PurchasedItem{{Name: "Tofu"}, {Name: "broccoli"}}}
	w = do(t, r, http.MethodPost, "/api/chat", friend, chatReq)
	expect(t, w, http.StatusOK, "chat")
	var chatResp types.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &chatResp); err != nil {
		t.Fatalf("failed to decode chat: %v", err)
	}
	if chatResp.Message != "Try a veggie stir fry." || chatResp.Source != "openai" {
		t.Fatalf("unexpected provider reply: %+v", chatResp)
	}

	providerStatus.Store(http.StatusTooManyRequests)
	w = do(t, r, http.MethodPost, "/api/chat", friend, chatReq)
	expect(t, w, http.StatusOK, "chat while rate limited")
	chatResp = types.ChatResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &chatResp); err != nil {
		t.Fatalf("failed to decode chat: %v", err)
	}
	if chatResp.Source != types.SourceFallback || chatResp.ErrorCode != "insufficient_quota" {
		t.Fatalf("expected fallback with quota code, got %+v", chatResp)
	}

	w = do(t, r, http.MethodDelete, listPath, friend, nil)
	expect(t, w, http.StatusForbidden, "editor deletes list")

	w = do(t, r, http.MethodDelete, listPath, owner, nil)
	expect(t, w, http.StatusOK, "owner deletes list")

	var remaining int64
	if err := td.DB.Model(&models.GroceryItem{}).Where("list_id = ?", list.ID).Count(&remaining).Error; err != nil {
		t.Fatalf("failed to count items: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("items survived list deletion: %d", remaining)
	}
}
