package dto

import (
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	commonDto "github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
)

type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

func ToAccountSummary(a *entity.Account) commonDto.AccountSummary {
	return commonDto.AccountSummary{
		ID:          a.ID.String(),
		Username:    a.Username,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
	}
}

func ToAccountSummaries(accounts []entity.Account) []commonDto.AccountSummary {
	out := make([]commonDto.AccountSummary, 0, len(accounts))
	for i := range accounts {
		out = append(out, ToAccountSummary(&accounts[i]))
	}
	return out
}
