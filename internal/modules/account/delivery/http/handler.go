package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	accountDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/dto"
	account "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/service"
	commonDto "github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service account.AccountService
}

func NewAccountHandler(service account.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req accountDto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req accountDto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) Me(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req accountDto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	var avatar *commonDto.UploadFile
	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.BadRequest(c, "failed to read avatar file")
			return
		}
		defer file.Close()

		avatar = &commonDto.UploadFile{
			Reader:   file,
			FileName: fileHeader.Filename,
		}
	}

	res, err := h.service.UpdateProfile(c.Request.Context(), actor, req, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) DeleteMe(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), actor, actor.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.GetProfile(c.Request.Context(), actor, c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var query accountDto.ListAccountsQuery
	var page commonDto.PageRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.ListAccounts(c.Request.Context(), actor, query, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) SetRole(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req accountDto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.SetRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) SetActive(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req accountDto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	res, err := h.service.SetActive(c.Request.Context(), actor, id, *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, ok := response.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
