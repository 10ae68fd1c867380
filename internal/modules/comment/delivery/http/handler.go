package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	commentDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/dto"
	comment "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service comment.CommentService
}

func NewCommentHandler(service comment.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	postID, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	var req commentDto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.CreateComment(c.Request.Context(), actor, postID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	postID, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.ListComments(c.Request.Context(), actor, postID, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
