package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	feed "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/feed/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	service feed.FeedService
}

func NewFeedHandler(service feed.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) GetFeed(c *gin.Context) {
	actor, page, ok := h.bind(c)
	if !ok {
		return
	}

	res, err := h.service.Feed(c.Request.Context(), actor, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FeedHandler) GetPublicPosts(c *gin.Context) {
	actor, page, ok := h.bind(c)
	if !ok {
		return
	}

	res, err := h.service.PublicListing(c.Request.Context(), actor, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FeedHandler) GetAuthorPosts(c *gin.Context) {
	actor, page, ok := h.bind(c)
	if !ok {
		return
	}
	authorID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	res, err := h.service.AuthorPosts(c.Request.Context(), actor, authorID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FeedHandler) bind(c *gin.Context) (actor entity.Actor, page dto.PageRequest, ok bool) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return actor, page, false
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return actor, page, false
	}
	return actor, page, true
}
