// Package visibility decides whether an actor may see or interact with a post.
//
// The rule, in order:
//
//  1. the author always may
//  2. administrators always may
//  3. anyone may when the post is PUBLIC
//  4. otherwise only followers of the author may
//
// The author's account-level visibility plays no part here; it only governs
// discovery (search index, public listing).
package visibility

import (
	"context"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/metrics"
	"github.com/google/uuid"
)

type Decision bool

const (
	Allow Decision = true
	Deny  Decision = false
)

// FollowChecker reports whether follower follows followed.
type FollowChecker interface {
	Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
}

// CanView applies the visibility rule. The follow graph is consulted only
// when the first three rules do not decide.
func CanView(ctx context.Context, post *entity.Post, actor entity.Actor, follows FollowChecker) (Decision, error) {
	if actor.ID == post.AuthorID || actor.IsAdmin() || post.Visibility == entity.VisibilityPublic {
		return Allow, nil
	}

	following, err := follows.Exists(ctx, actor.ID, post.AuthorID)
	if err != nil {
		return Deny, err
	}
	return Decision(following), nil
}

// CanInteract governs commenting and reacting. It shares the viewing rule.
func CanInteract(ctx context.Context, post *entity.Post, actor entity.Actor, follows FollowChecker) (Decision, error) {
	return CanView(ctx, post, actor, follows)
}

// Policy binds the rule to a follow graph and turns denials into errors.
type Policy struct {
	follows FollowChecker
}

func NewPolicy(follows FollowChecker) *Policy {
	return &Policy{follows: follows}
}

// EnsureCanView returns apperror.ErrVisibilityDenied when actor may not see post.
func (p *Policy) EnsureCanView(ctx context.Context, post *entity.Post, actor entity.Actor) error {
	return p.ensure(ctx, "view", post, actor)
}

// EnsureCanInteract returns apperror.ErrVisibilityDenied when actor may not
// comment on or react to post.
func (p *Policy) EnsureCanInteract(ctx context.Context, post *entity.Post, actor entity.Actor) error {
	return p.ensure(ctx, "interact", post, actor)
}

func (p *Policy) ensure(ctx context.Context, action string, post *entity.Post, actor entity.Actor) error {
	decision, err := CanView(ctx, post, actor, p.follows)
	if err != nil {
		return fmt.Errorf("failed to check follow relationship: %w", err)
	}
	if decision == Deny {
		metrics.VisibilityDenials.WithLabelValues(action).Inc()
		return fmt.Errorf("%w: post %s", apperror.ErrVisibilityDenied, post.ID)
	}
	return nil
}
