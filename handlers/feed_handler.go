package handlers

import (
	"blogfeed/helper"
	"blogfeed/models"
	"blogfeed/services"

	"github.com/gin-gonic/gin"
	"gopkg.in/go-playground/validator.v9"
)

type FeedHandler struct {
	feedService services.FeedService
	Helper      *helper.HTTPHelper
}

func NewFeedHandler(feedService services.FeedService, h *helper.HTTPHelper) *FeedHandler {
	return &FeedHandler{feedService: feedService, Helper: h}
}

// bindPaging reads page and page_size, writing the error response itself.
func bindPaging(c *gin.Context, h *helper.HTTPHelper) (models.FeedParams, bool) {
	var params models.FeedParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.SendBadRequest(c, err.Error(), h.EmptyJsonMap())
		return params, false
	}
	if err := h.Validate.Struct(params); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			h.SendValidationError(c, verrs)
		} else {
			h.SendBadRequest(c, err.Error(), h.EmptyJsonMap())
		}
		return params, false
	}
	return params, true
}

// Feed serves latest, top and relevant.
func (h *FeedHandler) Feed(kind services.FeedKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.serve(c, services.FeedRequest{Kind: kind})
	}
}

func (h *FeedHandler) AuthorFeed(c *gin.Context) {
	authorID, ok := paramID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid author ID", h.Helper.EmptyJsonMap())
		return
	}
	h.serve(c, services.FeedRequest{Kind: services.FeedByAuthor, AuthorID: authorID})
}

func (h *FeedHandler) TagFeed(c *gin.Context) {
	h.serve(c, services.FeedRequest{Kind: services.FeedByTag, TagName: c.Param("name")})
}

func (h *FeedHandler) serve(c *gin.Context, req services.FeedRequest) {
	params, ok := bindPaging(c, h.Helper)
	if !ok {
		return
	}
	req.Page = params.Page
	req.PageSize = params.PageSize
	req.ViewerID = viewerID(c)

	posts, err := h.feedService.Get(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendServiceError(c, err)
		return
	}

	h.Helper.SendPaged(c, "Success", posts, len(posts), req.Page, req.PageSize)
}
