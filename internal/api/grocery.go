package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerylist/backend/internal/models"
	"github.com/pageza/grocerylist/backend/internal/service"
	"github.com/pageza/grocerylist/backend/internal/types"
)

type GroceryHandler struct {
	groceries service.GroceryServiceInterface
}

func NewGroceryHandler(groceries service.GroceryServiceInterface) *GroceryHandler {
	return &GroceryHandler{groceries: groceries}
}

// RegisterRoutes expects router to already require authentication.
func (h *GroceryHandler) RegisterRoutes(router *gin.RouterGroup) {
	groceries := router.Group("/groceries")
	{
		groceries.GET("", h.ListItems)
		groceries.POST("", h.CreateItem)
		groceries.PUT("", h.UpdateItem)
		groceries.DELETE("", h.DeleteItem)
	}
}

// ListItems handles GET /groceries?status=&list_id=
func (h *GroceryHandler) ListItems(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	listID, err := parseID(c.Query("list_id"), "list_id")
	if err != nil {
		respondError(c, err)
		return
	}
	status, err := service.ParseStatus(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.groceries.ListItems(c.Request.Context(), userID, listID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *GroceryHandler) CreateItem(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.CreateItemRequest
	if !bindJSON(c, &req, "name and list_id are required") {
		return
	}
	listID, err := parseID(req.ListID, "list_id")
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.groceries.CreateItem(c.Request.Context(), userID, listID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem toggles an item's status.
func (h *GroceryHandler) UpdateItem(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.UpdateItemRequest
	if !bindJSON(c, &req, "id, status and list_id are required") {
		return
	}
	itemID, err := parseID(req.ID, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	listID, err := parseID(req.ListID, "list_id")
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := h.groceries.UpdateStatus(c.Request.Context(), userID, listID, itemID, models.ItemStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *GroceryHandler) DeleteItem(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.DeleteItemRequest
	if !bindJSON(c, &req, "id and list_id are required") {
		return
	}
	itemID, err := parseID(req.ID, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	listID, err := parseID(req.ListID, "list_id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.groceries.DeleteItem(c.Request.Context(), userID, listID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}
