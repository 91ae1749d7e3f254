package handlers

import (
	"blogfeed/helper"
	"blogfeed/models"
	"blogfeed/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService services.PostService
	Helper      *helper.HTTPHelper
}

func NewPostHandler(postService services.PostService, h *helper.HTTPHelper) *PostHandler {
	return &PostHandler{postService: postService, Helper: h}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), viewerID(c), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Post created successfully", post)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	post, err := h.postService.UpdatePost(c.Request.Context(), id, actor(c), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if post == nil {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Post updated successfully", post)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	post, err := h.postService.GetPost(c.Request.Context(), id, viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if post == nil {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Success", post)
}

func (h *PostHandler) GetPostBySlug(c *gin.Context) {
	post, err := h.postService.GetPostBySlug(c.Request.Context(), c.Param("lang"), c.Param("slug"), viewerID(c))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if post == nil {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Success", post)
}

// runAction handles the publish, unpublish and delete family, which all
// answer 404 when the action reports the post missing.
func (h *PostHandler) runAction(c *gin.Context, message string, action func(id uint) (bool, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	done, err := action(id)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if !done {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, message, h.Helper.EmptyJsonMap())
}

func (h *PostHandler) PublishPost(c *gin.Context) {
	h.runAction(c, "Post published", func(id uint) (bool, error) {
		return h.postService.PublishPost(c.Request.Context(), id, viewerID(c))
	})
}

func (h *PostHandler) UnpublishPost(c *gin.Context) {
	h.runAction(c, "Post unpublished", func(id uint) (bool, error) {
		return h.postService.UnpublishPost(c.Request.Context(), id, viewerID(c))
	})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	h.runAction(c, "Post deleted", func(id uint) (bool, error) {
		return h.postService.DeletePost(c.Request.Context(), id, viewerID(c))
	})
}

func (h *PostHandler) PurgePost(c *gin.Context) {
	h.runAction(c, "Post purged", func(id uint) (bool, error) {
		return h.postService.PurgePost(c.Request.Context(), id, actor(c))
	})
}

func (h *PostHandler) AddTag(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	var req models.TagNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, err.Error(), h.Helper.EmptyJsonMap())
		return
	}

	tag, err := h.postService.AddTag(c.Request.Context(), id, actor(c), req.Name)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if tag == nil {
		h.Helper.SendNotFoundError(c, "Post not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Tag linked", tag)
}

func (h *PostHandler) RemoveTag(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid post ID", h.Helper.EmptyJsonMap())
		return
	}

	removed, err := h.postService.RemoveTag(c.Request.Context(), id, actor(c), c.Param("name"))
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}
	if !removed {
		h.Helper.SendNotFoundError(c, "Tag link not found", h.Helper.EmptyJsonMap())
		return
	}

	h.Helper.SendSuccess(c, "Tag unlinked", h.Helper.EmptyJsonMap())
}

func (h *PostHandler) ReconcileCounters(c *gin.Context) {
	n, err := h.postService.ReconcileCounters(c.Request.Context())
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Counters reconciled", map[string]interface{}{"updated": n})
}
