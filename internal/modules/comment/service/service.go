package comment

import (
	"context"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	commentDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/dto"
	commentRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/sanitize"
	"github.com/google/uuid"
)

type CommentService interface {
	CreateComment(ctx context.Context, actor entity.Actor, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error)
	ListComments(ctx context.Context, actor entity.Actor, postID uuid.UUID, page dto.PageRequest) (*dto.Page[commentDto.CommentResponse], error)
	DeleteComment(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

type commentService struct {
	repo                commentRepo.CommentRepository
	postRepo            postRepo.PostRepository
	accountRepo         accountRepo.AccountRepository
	policy              *visibility.Policy
	notificationService notifService.NotificationService
	tx                  database.Transactor
}

func NewCommentService(
	repo commentRepo.CommentRepository,
	postRepo postRepo.PostRepository,
	accountRepo accountRepo.AccountRepository,
	policy *visibility.Policy,
	notificationService notifService.NotificationService,
	tx database.Transactor,
) CommentService {
	return &commentService{
		repo:                repo,
		postRepo:            postRepo,
		accountRepo:         accountRepo,
		policy:              policy,
		notificationService: notificationService,
		tx:                  tx,
	}
}

func (s *commentService) CreateComment(ctx context.Context, actor entity.Actor, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error) {
	var comment *entity.Comment
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// the foreign key rejects the insert if a cascade removes the post first
		post, err := s.postRepo.FindByID(ctx, postID)
		if err != nil {
			return err
		}
		if err := s.policy.EnsureCanInteract(ctx, post, actor); err != nil {
			return err
		}

		content := sanitize.Text(req.Content)
		if content == "" {
			return fmt.Errorf("%w: content is empty", apperror.ErrInvalidInput)
		}

		comment = &entity.Comment{PostID: post.ID, AuthorID: actor.ID, Content: content}
		if err := s.repo.Create(ctx, comment); err != nil {
			return err
		}

		if post.AuthorID != actor.ID {
			s.notificationService.Notify(ctx, notifService.NotifyInput{
				AccountID:     post.AuthorID,
				ActorID:       &actor.ID,
				Type:          entity.NotificationNewComment,
				Title:         "New comment",
				Body:          "Someone commented on your post",
				ReferenceID:   &post.ID,
				ReferenceType: entity.RefPost,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses, err := s.present(ctx, []entity.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *commentService) ListComments(ctx context.Context, actor entity.Actor, postID uuid.UUID, page dto.PageRequest) (*dto.Page[commentDto.CommentResponse], error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.EnsureCanView(ctx, post, actor); err != nil {
		return nil, err
	}

	comments, total, err := s.repo.ListByPost(ctx, postID, page)
	if err != nil {
		return nil, err
	}
	responses, err := s.present(ctx, comments)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(responses, page, total), nil
}

// DeleteComment is allowed to the comment's author, the post's author and
// administrators.
func (s *commentService) DeleteComment(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if comment.AuthorID != actor.ID && !actor.IsAdmin() {
		post, err := s.postRepo.FindByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.AuthorID != actor.ID {
			return fmt.Errorf("%w: cannot delete this comment", apperror.ErrForbidden)
		}
	}

	return s.repo.Delete(ctx, comment.ID)
}

func (s *commentService) present(ctx context.Context, comments []entity.Comment) ([]commentDto.CommentResponse, error) {
	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := s.accountRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]dto.AccountSummary, len(authors))
	for _, a := range authors {
		byID[a.ID] = dto.AccountSummary{ID: a.ID.String(), Username: a.Username, DisplayName: a.DisplayName, AvatarURL: a.AvatarURL}
	}

	responses := make([]commentDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		author, ok := byID[c.AuthorID]
		if !ok {
			author = dto.AccountSummary{ID: c.AuthorID.String(), Username: "unknown"}
		}
		responses = append(responses, commentDto.CommentResponse{
			ID:        c.ID,
			PostID:    c.PostID,
			Author:    author,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return responses, nil
}
