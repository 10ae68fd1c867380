package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	reactionDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/dto"
	reaction "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	service reaction.ReactionService
}

func NewReactionHandler(service reaction.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	postID, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	var req reactionDto.ReactionToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.Toggle(c.Request.Context(), actor, postID, req.Kind)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReactionHandler) GetReactions(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	postID, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	res, err := h.service.Summary(c.Request.Context(), actor, postID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
