package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	postDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/dto"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	commonDto "github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postService post.PostService
}

func NewPostHandler(postService post.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req postDto.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	var media *commonDto.UploadFile
	if fileHeader, err := c.FormFile("media"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.BadRequest(c, "failed to read media file")
			return
		}
		defer file.Close()

		media = &commonDto.UploadFile{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	res, err := h.postService.CreatePost(c.Request.Context(), actor, req, media)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *PostHandler) GetPostByID(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	res, err := h.postService.GetPost(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	var req postDto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.postService.UpdatePost(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "post_id")
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}
