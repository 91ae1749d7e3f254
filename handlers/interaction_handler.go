package handlers

import (
	"blogfeed/helper"
	"blogfeed/models"
	"blogfeed/services"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	interactionService services.InteractionService
	Helper             *helper.HTTPHelper
}

func NewInteractionHandler(interactionService services.InteractionService, h *helper.HTTPHelper) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService, Helper: h}
}

func (h *InteractionHandler) sendToggle(c *gin.Context, res *models.ToggleResult, err error) {
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if res == nil {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}
	h.Helper.SendSuccess(c, "Success", res)
}

func (h *InteractionHandler) ToggleReaction(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	res, err := h.interactionService.ToggleReaction(c.Request.Context(), postID, viewerID(c), req.Type)
	h.sendToggle(c, res, err)
}

func (h *InteractionHandler) ToggleBookmark(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	res, err := h.interactionService.ToggleBookmark(c.Request.Context(), postID, viewerID(c))
	h.sendToggle(c, res, err)
}

func (h *InteractionHandler) ToggleFollow(c *gin.Context) {
	followeeID, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid user ID", h.Helper.EmptyJsonMap())
		return
	}

	res, err := h.interactionService.ToggleFollow(c.Request.Context(), viewerID(c), followeeID)
	h.sendToggle(c, res, err)
}

func (h *InteractionHandler) GetBookmarks(c *gin.Context) {
	params, ok := bindPaging(c, h.Helper)
	if !ok {
		return
	}

	posts, err := h.interactionService.GetBookmarkedPosts(c.Request.Context(), viewerID(c), params.Page, params.PageSize)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendPaged(c, "Success", posts, len(posts), params.Page, params.PageSize)
}
