package feed

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	feedRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/feed/repository"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	postDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/dto"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
)

type FeedService interface {
	Feed(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.Page[postDto.PostResponse], error)
	PublicListing(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.Page[postDto.PostResponse], error)
	AuthorPosts(ctx context.Context, actor entity.Actor, authorID uuid.UUID, page dto.PageRequest) (*dto.Page[postDto.PostResponse], error)
}

type feedService struct {
	repo        feedRepo.FeedRepository
	followRepo  followRepo.FollowRepository
	accountRepo accountRepo.AccountRepository
	postService post.PostService
}

func NewFeedService(repo feedRepo.FeedRepository, followRepo followRepo.FollowRepository, accountRepo accountRepo.AccountRepository, postService post.PostService) FeedService {
	return &feedService{
		repo:        repo,
		followRepo:  followRepo,
		accountRepo: accountRepo,
		postService: postService,
	}
}

// Feed is the viewer's own posts plus PUBLIC posts of the accounts they
// follow. Administrators do not have a feed.
func (s *feedService) Feed(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.Page[postDto.PostResponse], error) {
	if actor.IsAdmin() {
		return dto.NewPage([]postDto.PostResponse{}, page, 0), nil
	}

	posts, total, err := s.repo.Feed(ctx, actor.ID, page)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, posts, page, total)
}

func (s *feedService) PublicListing(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.Page[postDto.PostResponse], error) {
	posts, total, err := s.repo.PublicListing(ctx, actor.ID, page)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, posts, page, total)
}

func (s *feedService) AuthorPosts(ctx context.Context, actor entity.Actor, authorID uuid.UUID, page dto.PageRequest) (*dto.Page[postDto.PostResponse], error) {
	if _, err := s.accountRepo.FindByID(ctx, authorID); err != nil {
		return nil, err
	}

	includePrivate := actor.ID == authorID || actor.IsAdmin()
	if !includePrivate {
		follows, err := s.followRepo.Exists(ctx, actor.ID, authorID)
		if err != nil {
			return nil, err
		}
		includePrivate = follows
	}

	posts, total, err := s.repo.AuthorPosts(ctx, authorID, includePrivate, page)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, posts, page, total)
}

func (s *feedService) present(ctx context.Context, posts []entity.Post, page dto.PageRequest, total int64) (*dto.Page[postDto.PostResponse], error) {
	responses, err := s.postService.Present(ctx, posts)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(responses, page, total), nil
}
