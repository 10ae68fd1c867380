package handler

import (
	"context"
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	follow "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FollowHandler struct {
	service follow.FollowService
}

func NewFollowHandler(service follow.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	targetID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Follow(c.Request.Context(), actor, targetID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "followed"})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	targetID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), actor, targetID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed"})
}

func (h *FollowHandler) ListFollowers(c *gin.Context) {
	h.list(c, h.service.ListFollowers)
}

func (h *FollowHandler) ListFollowing(c *gin.Context) {
	h.list(c, h.service.ListFollowing)
}

type listFunc func(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error)

func (h *FollowHandler) list(c *gin.Context, fetch listFunc) {
	accountID, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	accounts, err := fetch(c.Request.Context(), accountID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}
