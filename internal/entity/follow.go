package entity

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge: FollowerID receives access to FollowedID's
// private content.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_follows_pair,priority:1;check:chk_follows_no_self,follower_id <> followed_id" json:"follower_id"`
	FollowedID uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_follows_pair,priority:2;index:idx_follows_followed" json:"followed_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
