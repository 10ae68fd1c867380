package account

import (
	"context"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/dto"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
)

func requireAdmin(actor entity.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: administrator role required", apperror.ErrForbidden)
	}
	return nil
}

func (s *accountService) ListAccounts(ctx context.Context, actor entity.Actor, query accountDto.ListAccountsQuery, page dto.PageRequest) (*dto.Page[accountDto.AccountResponse], error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	accounts, total, err := s.repo.List(ctx, accountRepo.AccountFilter{
		Role:   query.Role,
		Active: query.Active,
		Query:  query.Query,
	}, page)
	if err != nil {
		return nil, err
	}

	items := make([]accountDto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, accountDto.ToAccountResponse(&accounts[i]))
	}
	return dto.NewPage(items, page, total), nil
}

// ensureAdminRemains fails when target is the last active administrator.
// It runs inside the mutating transaction.
func (s *accountService) ensureAdminRemains(ctx context.Context, target *entity.Account) error {
	if !target.IsAdmin() || !target.Active {
		return nil
	}
	count, err := s.repo.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return fmt.Errorf("%w: at least one active administrator must remain", apperror.ErrInvalidOperation)
	}
	return nil
}

func (s *accountService) SetRole(ctx context.Context, actor entity.Actor, id uuid.UUID, role entity.Role) (*accountDto.AccountResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be USER or ADMIN", apperror.ErrInvalidInput)
	}

	var account *entity.Account
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if account.Role == role {
			return nil
		}
		if role != entity.RoleAdmin {
			if err := s.ensureAdminRemains(ctx, account); err != nil {
				return err
			}
		}

		previous := account.Role
		account.Role = role
		if err := s.repo.Update(ctx, account); err != nil {
			return err
		}

		if _, err := s.auditService.Record(ctx, audit.RecordInput{
			AdminID:            actor.ID,
			ActionType:         entity.AuditAccountRole,
			Title:              "Account role changed",
			Description:        fmt.Sprintf("Account %s changed from %s to %s", account.Username, previous, role),
			AffectedEntityID:   account.ID,
			AffectedEntityType: entity.RefAccount,
			AffectedAccountID:  &account.ID,
		}); err != nil {
			return err
		}

		s.reindex(ctx, account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := accountDto.ToAccountResponse(account)
	return &res, nil
}

func (s *accountService) SetActive(ctx context.Context, actor entity.Actor, id uuid.UUID, active bool) (*accountDto.AccountResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var account *entity.Account
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if account.Active == active {
			return nil
		}
		if !active {
			if err := s.ensureAdminRemains(ctx, account); err != nil {
				return err
			}
		}

		account.Active = active
		if err := s.repo.Update(ctx, account); err != nil {
			return err
		}

		title := "Account deactivated"
		if active {
			title = "Account reactivated"
		}
		if _, err := s.auditService.Record(ctx, audit.RecordInput{
			AdminID:            actor.ID,
			ActionType:         entity.AuditAccountActivity,
			Title:              title,
			Description:        fmt.Sprintf("Account %s is now active=%t", account.Username, active),
			AffectedEntityID:   account.ID,
			AffectedEntityType: entity.RefAccount,
			AffectedAccountID:  &account.ID,
		}); err != nil {
			return err
		}

		s.reindex(ctx, account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := accountDto.ToAccountResponse(account)
	return &res, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	if actor.ID != id {
		if err := requireAdmin(actor); err != nil {
			return err
		}
	}

	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		account, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.ensureAdminRemains(ctx, account); err != nil {
			return err
		}

		postIDs, err := s.postRepo.IDsByAuthor(ctx, account.ID)
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			if _, err := s.postService.Cascade(ctx, post.CascadeInput{
				Actor:   entity.ActorOf(account),
				PostID:  postID,
				Trigger: post.TriggerPurge,
			}); err != nil {
				return err
			}
		}

		reacted, err := s.reactionRepo.DeleteByAccount(ctx, account.ID)
		if err != nil {
			return err
		}
		if err := s.commentRepo.DeleteByAuthor(ctx, account.ID); err != nil {
			return err
		}
		if err := s.followRepo.DeleteAllFor(ctx, account.ID); err != nil {
			return err
		}
		if err := s.notifRepo.DeleteByAccountID(ctx, account.ID); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, account.ID); err != nil {
			return err
		}

		if actor.IsAdmin() {
			if _, err := s.auditService.Record(ctx, audit.RecordInput{
				AdminID:            actor.ID,
				ActionType:         entity.AuditAccountDeleted,
				Title:              "Account deleted",
				Description:        fmt.Sprintf("Account %s (%s) and its %d posts were deleted", account.Username, account.Email, len(postIDs)),
				AffectedEntityID:   account.ID,
				AffectedEntityType: entity.RefAccount,
				AffectedAccountID:  &account.ID,
			}); err != nil {
				return err
			}
		}

		s.unindex(ctx, account.ID)
		avatar := account.AvatarURL
		database.AfterCommit(ctx, func() {
			ctx := database.Detach(ctx)
			if s.counters != nil {
				for _, postID := range reacted {
					s.counters.Forget(ctx, postID)
				}
			}
			if avatar != nil {
				s.deleteMedia(ctx, *avatar)
			}
		})
		return nil
	})
}
