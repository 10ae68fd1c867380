package post

import (
	"context"
	"fmt"
	"strings"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/dto"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/metrics"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/sanitize"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/storage"
	"github.com/google/uuid"
)

// Cascade triggers, also used as metric labels.
const (
	TriggerAuthor = "author"
	TriggerAdmin  = "admin"
	TriggerReport = "report"
	TriggerPurge  = "account_deleted"
)

// CounterCache drops cached reaction totals of removed posts.
type CounterCache interface {
	Forget(ctx context.Context, postID uuid.UUID)
}

type CascadeInput struct {
	Actor   entity.Actor
	PostID  uuid.UUID
	Trigger string
	Reason  string
}

type PostService interface {
	CreatePost(ctx context.Context, actor entity.Actor, req postDto.CreatePostRequest, media *dto.UploadFile) (*postDto.PostResponse, error)
	GetPost(ctx context.Context, actor entity.Actor, id uuid.UUID) (*postDto.PostResponse, error)
	UpdatePost(ctx context.Context, actor entity.Actor, id uuid.UUID, req postDto.UpdatePostRequest) (*postDto.PostResponse, error)
	DeletePost(ctx context.Context, actor entity.Actor, id uuid.UUID) error
	// Cascade removes a post with its comments and reactions in the caller's
	// transaction. A post that is already gone is tolerated and reported as
	// not removed. Removing somebody else's post as an administrator is
	// audited and the author is told.
	Cascade(ctx context.Context, in CascadeInput) (bool, error)
	// Present turns posts into responses with authors and batched counts.
	Present(ctx context.Context, posts []entity.Post) ([]postDto.PostResponse, error)
}

type postService struct {
	repo                postRepo.PostRepository
	accountRepo         accountRepo.AccountRepository
	policy              *visibility.Policy
	auditService        audit.AuditService
	notificationService notifService.NotificationService
	counters            CounterCache
	mediaStorage        storage.MediaStorage
	tx                  database.Transactor
	uploadFolder        string
}

func NewPostService(
	repo postRepo.PostRepository,
	accountRepo accountRepo.AccountRepository,
	policy *visibility.Policy,
	auditService audit.AuditService,
	notificationService notifService.NotificationService,
	counters CounterCache,
	mediaStorage storage.MediaStorage,
	tx database.Transactor,
	uploadFolder string,
) PostService {
	return &postService{
		repo:                repo,
		accountRepo:         accountRepo,
		policy:              policy,
		auditService:        auditService,
		notificationService: notificationService,
		counters:            counters,
		mediaStorage:        mediaStorage,
		tx:                  tx,
		uploadFolder:        uploadFolder,
	}
}

func (s *postService) CreatePost(ctx context.Context, actor entity.Actor, req postDto.CreatePostRequest, media *dto.UploadFile) (*postDto.PostResponse, error) {
	if actor.IsAdmin() {
		return nil, fmt.Errorf("%w: administrators moderate content and cannot publish posts", apperror.ErrForbidden)
	}

	content := sanitize.Text(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", apperror.ErrInvalidInput)
	}

	vis := req.Visibility
	if vis == "" {
		vis = entity.VisibilityPublic
	}
	if !vis.Valid() {
		return nil, fmt.Errorf("%w: visibility must be PUBLIC or PRIVATE", apperror.ErrInvalidInput)
	}

	post := &entity.Post{
		AuthorID:   actor.ID,
		Content:    content,
		Visibility: vis,
	}

	if media != nil {
		if s.mediaStorage == nil {
			return nil, fmt.Errorf("%w: media uploads are not configured", apperror.ErrInvalidOperation)
		}
		url, err := s.mediaStorage.Upload(ctx, media.Reader, s.uploadFolder+"/posts", media.FileName)
		if err != nil {
			return nil, err
		}
		post.MediaURL = &url
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if post.MediaURL != nil {
			s.deleteMedia(ctx, *post.MediaURL)
		}
		return nil, err
	}

	return s.presentOne(ctx, post)
}

func (s *postService) GetPost(ctx context.Context, actor entity.Actor, id uuid.UUID) (*postDto.PostResponse, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.EnsureCanView(ctx, post, actor); err != nil {
		return nil, err
	}
	return s.presentOne(ctx, post)
}

func (s *postService) UpdatePost(ctx context.Context, actor entity.Actor, id uuid.UUID, req postDto.UpdatePostRequest) (*postDto.PostResponse, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actor.ID {
		return nil, fmt.Errorf("%w: only the author can edit this post", apperror.ErrForbidden)
	}

	if req.Content != nil {
		content := sanitize.Text(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("%w: content is empty", apperror.ErrInvalidInput)
		}
		post.Content = content
	}
	if req.Visibility != nil {
		if !req.Visibility.Valid() {
			return nil, fmt.Errorf("%w: visibility must be PUBLIC or PRIVATE", apperror.ErrInvalidInput)
		}
		post.Visibility = *req.Visibility
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.presentOne(ctx, post)
}

func (s *postService) DeletePost(ctx context.Context, actor entity.Actor, id uuid.UUID) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}

		trigger := TriggerAuthor
		switch {
		case post.AuthorID == actor.ID:
		case actor.IsAdmin():
			trigger = TriggerAdmin
		default:
			return fmt.Errorf("%w: only the author or an administrator can delete this post", apperror.ErrForbidden)
		}

		_, err = s.Cascade(ctx, CascadeInput{Actor: actor, PostID: post.ID, Trigger: trigger})
		return err
	})
}

func (s *postService) Cascade(ctx context.Context, in CascadeInput) (bool, error) {
	var removed bool
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := s.repo.FindByID(ctx, in.PostID)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		removed, err = s.repo.DeleteCascade(ctx, in.PostID)
		if err != nil {
			metrics.CascadeDeletions.WithLabelValues(in.Trigger, "failed").Inc()
			return err
		}
		if !removed || post == nil {
			return nil
		}

		// a resolved report always records the removal, even when the
		// reviewing admin wrote the post before being promoted
		if in.Trigger == TriggerReport || (in.Actor.IsAdmin() && in.Actor.ID != post.AuthorID) {
			if err := s.recordRemoval(ctx, in, post); err != nil {
				return err
			}
		}

		database.AfterCommit(ctx, func() {
			ctx := database.Detach(ctx)
			metrics.CascadeDeletions.WithLabelValues(in.Trigger, "deleted").Inc()
			if s.counters != nil {
				s.counters.Forget(ctx, post.ID)
			}
			if post.MediaURL != nil {
				s.deleteMedia(ctx, *post.MediaURL)
			}
		})
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (s *postService) recordRemoval(ctx context.Context, in CascadeInput, post *entity.Post) error {
	description := fmt.Sprintf("Post %s by account %s was removed", post.ID, post.AuthorID)
	if in.Reason != "" {
		description += ": " + in.Reason
	}

	if _, err := s.auditService.Record(ctx, audit.RecordInput{
		AdminID:            in.Actor.ID,
		ActionType:         entity.AuditPostDeleted,
		Title:              "Post deleted",
		Description:        description,
		AffectedEntityID:   post.ID,
		AffectedEntityType: entity.RefPost,
		AffectedAccountID:  &post.AuthorID,
	}); err != nil {
		return err
	}

	s.notificationService.Notify(ctx, notifService.NotifyInput{
		AccountID:     post.AuthorID,
		ActorID:       &in.Actor.ID,
		Type:          entity.NotificationContentRemoved,
		Title:         "Your post was removed",
		Body:          removalBody(post, in.Reason),
		ReferenceID:   &post.ID,
		ReferenceType: entity.RefPost,
	})
	return nil
}

func removalBody(post *entity.Post, reason string) string {
	snippet := post.Content
	if len([]rune(snippet)) > 40 {
		snippet = string([]rune(snippet)[:40]) + "..."
	}
	body := fmt.Sprintf("An administrator removed your post %q", snippet)
	if reason = strings.TrimSpace(reason); reason != "" {
		body += ". Reason: " + reason
	}
	return body
}

func (s *postService) deleteMedia(ctx context.Context, url string) {
	if s.mediaStorage == nil {
		return
	}
	if err := s.mediaStorage.Delete(ctx, url); err != nil {
		logger.WarnWithContext(ctx, "failed to delete media %s: %v", url, err)
	}
}

func (s *postService) presentOne(ctx context.Context, post *entity.Post) (*postDto.PostResponse, error) {
	responses, err := s.Present(ctx, []entity.Post{*post})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *postService) Present(ctx context.Context, posts []entity.Post) ([]postDto.PostResponse, error) {
	ids := make([]uuid.UUID, 0, len(posts))
	authorIDs := make([]uuid.UUID, 0, len(posts))
	seen := make(map[uuid.UUID]struct{})
	for _, p := range posts {
		ids = append(ids, p.ID)
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := s.accountRepo.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]dto.AccountSummary, len(authors))
	for _, a := range authors {
		byID[a.ID] = dto.AccountSummary{ID: a.ID.String(), Username: a.Username, DisplayName: a.DisplayName, AvatarURL: a.AvatarURL}
	}

	comments, err := s.repo.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	reactions, err := s.repo.ReactionCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]postDto.PostResponse, 0, len(posts))
	for _, p := range posts {
		author, ok := byID[p.AuthorID]
		if !ok {
			author = dto.AccountSummary{ID: p.AuthorID.String(), Username: "unknown"}
		}
		responses = append(responses, postDto.PostResponse{
			ID:            p.ID,
			Author:        author,
			Content:       p.Content,
			MediaURL:      p.MediaURL,
			Visibility:    p.Visibility,
			CommentCount:  comments[p.ID],
			ReactionCount: reactions[p.ID],
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
		})
	}
	return responses, nil
}
