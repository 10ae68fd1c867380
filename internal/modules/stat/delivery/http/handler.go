package handler

import (
	"net/http"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	stat "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService stat.StatService
}

func NewStatHandler(statService stat.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) GetOverview(c *gin.Context) {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.statService.Overview(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
