package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/middleware"
	accountDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/dto"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	commentRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/repository"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	reactionRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/repository"
	search "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/search/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/sanitize"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	JWTSecret    string
	TokenTTL     time.Duration
	UploadFolder string
}

type AccountService interface {
	Register(ctx context.Context, req accountDto.RegisterRequest) (*accountDto.AuthResponse, error)
	Login(ctx context.Context, req accountDto.LoginRequest) (*accountDto.AuthResponse, error)
	Me(ctx context.Context, actor entity.Actor) (*accountDto.AccountResponse, error)
	GetProfile(ctx context.Context, actor entity.Actor, username string) (*accountDto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, actor entity.Actor, req accountDto.UpdateProfileRequest, avatar *dto.UploadFile) (*accountDto.AccountResponse, error)

	ListAccounts(ctx context.Context, actor entity.Actor, query accountDto.ListAccountsQuery, page dto.PageRequest) (*dto.Page[accountDto.AccountResponse], error)
	SetRole(ctx context.Context, actor entity.Actor, id uuid.UUID, role entity.Role) (*accountDto.AccountResponse, error)
	SetActive(ctx context.Context, actor entity.Actor, id uuid.UUID, active bool) (*accountDto.AccountResponse, error)
	// DeleteAccount removes an account with everything it owns. Accounts may
	// delete themselves; administrators may delete anyone.
	DeleteAccount(ctx context.Context, actor entity.Actor, id uuid.UUID) error
}

type accountService struct {
	repo         accountRepo.AccountRepository
	followRepo   followRepo.FollowRepository
	postRepo     postRepo.PostRepository
	commentRepo  commentRepo.CommentRepository
	reactionRepo reactionRepo.ReactionRepository
	notifRepo    notifRepo.NotificationRepository
	postService  post.PostService
	auditService audit.AuditService
	indexer      search.AccountIndexer
	counters     post.CounterCache
	mediaStorage storage.MediaStorage
	tx           database.Transactor
	opts         Options
}

func NewAccountService(
	repo accountRepo.AccountRepository,
	followRepo followRepo.FollowRepository,
	postRepo postRepo.PostRepository,
	commentRepo commentRepo.CommentRepository,
	reactionRepo reactionRepo.ReactionRepository,
	notifRepo notifRepo.NotificationRepository,
	postService post.PostService,
	auditService audit.AuditService,
	indexer search.AccountIndexer,
	counters post.CounterCache,
	mediaStorage storage.MediaStorage,
	tx database.Transactor,
	opts Options,
) AccountService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &accountService{
		repo:         repo,
		followRepo:   followRepo,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		reactionRepo: reactionRepo,
		notifRepo:    notifRepo,
		postService:  postService,
		auditService: auditService,
		indexer:      indexer,
		counters:     counters,
		mediaStorage: mediaStorage,
		tx:           tx,
		opts:         opts,
	}
}

func (s *accountService) Register(ctx context.Context, req accountDto.RegisterRequest) (*accountDto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", apperror.ErrConflict)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username is already taken", apperror.ErrConflict)
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := sanitize.Inline(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	account := &entity.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Role:         entity.RoleUser,
		Visibility:   entity.VisibilityPublic,
		Active:       true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.reindex(ctx, account)
	return s.authResponse(account)
}

func (s *accountService) Login(ctx context.Context, req accountDto.LoginRequest) (*accountDto.AuthResponse, error) {
	account, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthenticated)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthenticated)
	}
	if !account.Active {
		return nil, fmt.Errorf("%w: account is deactivated", apperror.ErrUnauthenticated)
	}

	return s.authResponse(account)
}

func (s *accountService) authResponse(account *entity.Account) (*accountDto.AuthResponse, error) {
	token, expiresAt, err := middleware.IssueToken(s.opts.JWTSecret, account.ID, s.opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &accountDto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		Account:     accountDto.ToAccountResponse(account),
	}, nil
}

func (s *accountService) Me(ctx context.Context, actor entity.Actor) (*accountDto.AccountResponse, error) {
	account, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	res := accountDto.ToAccountResponse(account)
	return &res, nil
}

// GetProfile is open to every signed-in account: account visibility only
// governs discovery. Deactivated accounts are visible to administrators only.
func (s *accountService) GetProfile(ctx context.Context, actor entity.Actor, username string) (*accountDto.ProfileResponse, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !account.Active && !actor.IsAdmin() && actor.ID != account.ID {
		return nil, fmt.Errorf("%w: account %s", apperror.ErrNotFound, username)
	}

	followers, err := s.followRepo.CountFollowers(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	var isFollowing bool
	if actor.ID != account.ID {
		if isFollowing, err = s.followRepo.Exists(ctx, actor.ID, account.ID); err != nil {
			return nil, err
		}
	}

	return &accountDto.ProfileResponse{
		ID:             account.ID,
		Username:       account.Username,
		DisplayName:    account.DisplayName,
		Bio:            account.Bio,
		AvatarURL:      account.AvatarURL,
		Role:           account.Role,
		Visibility:     account.Visibility,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		CreatedAt:      account.CreatedAt,
	}, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, actor entity.Actor, req accountDto.UpdateProfileRequest, avatar *dto.UploadFile) (*accountDto.AccountResponse, error) {
	account, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		name := sanitize.Inline(*req.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: display name is empty", apperror.ErrInvalidInput)
		}
		account.DisplayName = name
	}
	if req.Bio != nil {
		if bio := sanitize.Text(*req.Bio); bio != "" {
			account.Bio = &bio
		} else {
			account.Bio = nil
		}
	}
	if req.Visibility != nil {
		if !req.Visibility.Valid() {
			return nil, fmt.Errorf("%w: visibility must be PUBLIC or PRIVATE", apperror.ErrInvalidInput)
		}
		if account.IsAdmin() && *req.Visibility != entity.VisibilityPrivate {
			return nil, fmt.Errorf("%w: administrator accounts stay private", apperror.ErrInvalidOperation)
		}
		account.Visibility = *req.Visibility
	}

	var previousAvatar, uploaded *string
	if avatar != nil && avatar.Reader != nil {
		if s.mediaStorage == nil {
			return nil, fmt.Errorf("%w: media uploads are not configured", apperror.ErrInvalidOperation)
		}
		url, err := s.mediaStorage.Upload(ctx, avatar.Reader, s.opts.UploadFolder+"/avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		previousAvatar = account.AvatarURL
		uploaded = &url
		account.AvatarURL = uploaded
	}

	if err := s.repo.Update(ctx, account); err != nil {
		if uploaded != nil {
			s.deleteMedia(ctx, *uploaded)
		}
		return nil, err
	}

	if previousAvatar != nil {
		s.deleteMedia(ctx, *previousAvatar)
	}
	s.reindex(ctx, account)

	res := accountDto.ToAccountResponse(account)
	return &res, nil
}

// reindex refreshes the discovery index once the change is committed.
// Index failures are logged, the index catches up on the next change.
func (s *accountService) reindex(ctx context.Context, account *entity.Account) {
	if s.indexer == nil {
		return
	}
	snapshot := *account
	database.AfterCommit(ctx, func() {
		ctx := database.Detach(ctx)
		if err := s.indexer.IndexAccount(ctx, &snapshot); err != nil {
			logger.WarnWithContext(ctx, "failed to index account %s: %v", snapshot.ID, err)
		}
	})
}

func (s *accountService) unindex(ctx context.Context, id uuid.UUID) {
	if s.indexer == nil {
		return
	}
	database.AfterCommit(ctx, func() {
		ctx := database.Detach(ctx)
		if err := s.indexer.RemoveAccount(ctx, id); err != nil {
			logger.WarnWithContext(ctx, "failed to remove account %s from index: %v", id, err)
		}
	})
}

func (s *accountService) deleteMedia(ctx context.Context, url string) {
	if s.mediaStorage == nil {
		return
	}
	if err := s.mediaStorage.Delete(ctx, url); err != nil {
		logger.WarnWithContext(ctx, "failed to delete media %s: %v", url, err)
	}
}
