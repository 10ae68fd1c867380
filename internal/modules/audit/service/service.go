package audit

import (
	"context"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	auditRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
)

type RecordInput struct {
	AdminID            uuid.UUID
	ActionType         entity.AuditAction
	Title              string
	Description        string
	AffectedEntityID   uuid.UUID
	AffectedEntityType string
	AffectedAccountID  *uuid.UUID
}

type AuditService interface {
	// Record appends an entry in the caller's transaction. An error must
	// abort the privileged operation being recorded.
	Record(ctx context.Context, in RecordInput) (*entity.AuditEntry, error)
	List(ctx context.Context, actor entity.Actor, filter auditRepo.AuditFilter, page dto.PageRequest) (*dto.Page[entity.AuditEntry], error)
}

type auditService struct {
	repo auditRepo.AuditRepository
}

func NewAuditService(repo auditRepo.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, in RecordInput) (*entity.AuditEntry, error) {
	if in.AdminID == uuid.Nil || in.ActionType == "" || in.AffectedEntityID == uuid.Nil {
		return nil, fmt.Errorf("%w: audit entry needs an admin, an action and an affected entity", apperror.ErrInvalidInput)
	}

	entry := &entity.AuditEntry{
		AdminID:            in.AdminID,
		ActionType:         in.ActionType,
		Title:              in.Title,
		Description:        in.Description,
		AffectedEntityID:   in.AffectedEntityID,
		AffectedEntityType: in.AffectedEntityType,
		AffectedAccountID:  in.AffectedAccountID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record audit entry: %w", err)
	}
	return entry, nil
}

func (s *auditService) List(ctx context.Context, actor entity.Actor, filter auditRepo.AuditFilter, page dto.PageRequest) (*dto.Page[entity.AuditEntry], error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only administrators can read the audit log", apperror.ErrForbidden)
	}

	entries, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(entries, page, total), nil
}
