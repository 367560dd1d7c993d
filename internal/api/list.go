package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
	"github.com/pageza/grocerylist/backend/internal/service"
	"github.com/pageza/grocerylist/backend/internal/types"
)

type ListHandler struct {
	lists   service.ListServiceInterface
	exports service.ExportServiceInterface
}

func NewListHandler(lists service.ListServiceInterface, exports service.ExportServiceInterface) *ListHandler {
	return &ListHandler{lists: lists, exports: exports}
}

// RegisterRoutes expects router to already require authentication.
func (h *ListHandler) RegisterRoutes(router *gin.RouterGroup) {
	lists := router.Group("/lists")
	{
		lists.GET("", h.ListLists)
		lists.POST("", h.CreateList)
		lists.GET("/:id", h.GetList)
		lists.DELETE("/:id", h.DeleteList)
		lists.GET("/:id/permissions", h.GetPermissions)
		lists.GET("/:id/members", h.ListMembers)
		lists.PUT("/:id/share", h.UpdateMember)
		lists.DELETE("/:id/members/:user_id", h.RemoveMember)
		lists.POST("/:id/export", h.ExportList)
	}
	router.POST("/memberships", h.JoinList)
}

// userAndList resolves the caller and the :id path parameter.
func userAndList(c *gin.Context) (userID, listID uuid.UUID, ok bool) {
	uid, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return userID, listID, false
	}
	lid, err := parseID(c.Param("id"), "list id")
	if err != nil {
		respondError(c, err)
		return userID, listID, false
	}
	return uid, lid, true
}

func (h *ListHandler) ListLists(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.lists.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ListHandler) CreateList(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.CreateListRequest
	if !bindJSON(c, &req, "name is required") {
		return
	}

	list, err := h.lists.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *ListHandler) GetList(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	detail, err := h.lists.Get(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ListHandler) DeleteList(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	if err := h.lists.Delete(c.Request.Context(), userID, listID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// GetPermissions is the pre-flight access check used by the UI.
func (h *ListHandler) GetPermissions(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	decision, err := h.lists.Permissions(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}

func (h *ListHandler) ListMembers(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	members, err := h.lists.Members(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// UpdateMember handles PUT /lists/:id/share {user_id, can_edit}.
func (h *ListHandler) UpdateMember(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	var req types.UpdateMemberRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}
	if req.UserID == "" || req.CanEdit == nil {
		respondError(c, apperrors.Validation("user_id and can_edit are required"))
		return
	}
	memberID, err := parseID(req.UserID, "user_id")
	if err != nil {
		respondError(c, err)
		return
	}

	member, err := h.lists.UpdateMemberPermission(c.Request.Context(), userID, listID, memberID, *req.CanEdit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *ListHandler) RemoveMember(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}
	memberID, err := parseID(c.Param("user_id"), "user_id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.lists.RemoveMember(c.Request.Context(), userID, listID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// JoinList redeems a share code.
func (h *ListHandler) JoinList(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.JoinListRequest
	if !bindJSON(c, &req, "share_code is required") {
		return
	}

	member, err := h.lists.Join(c.Request.Context(), userID, req.ShareCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *ListHandler) ExportList(c *gin.Context) {
	userID, listID, ok := userAndList(c)
	if !ok {
		return
	}

	resp, err := h.exports.Export(c.Request.Context(), userID, listID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
