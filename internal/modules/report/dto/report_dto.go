package dto

import "github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"

type CreateReportRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ReviewReportRequest struct {
	Decision entity.ReportStatus `json:"decision" binding:"required"`
}

type ListReportsQuery struct {
	Status entity.ReportStatus `form:"status" binding:"omitempty,oneof=PENDING RESOLVED REJECTED"`
}
