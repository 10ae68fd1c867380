package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	auditRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditHandler struct {
	service audit.AuditService
}

func NewAuditHandler(service audit.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

type listQuery struct {
	dto.PageRequest
	ActionType string `form:"action_type"`
	AccountID  string `form:"account_id" binding:"omitempty,uuid"`
}

func (h *AuditHandler) List(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, validator.FormatValidationError(err))
		return
	}

	filter := auditRepo.AuditFilter{ActionType: entity.AuditAction(q.ActionType)}
	if q.AccountID != "" {
		id := uuid.MustParse(q.AccountID)
		filter.AffectedAccountID = &id
	}

	entries, err := h.service.List(c.Request.Context(), actor, filter, q.PageRequest)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
