package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsFiled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindhub_reports_filed_total",
		Help: "Reports created against posts.",
	})

	ReportsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindhub_reports_reviewed_total",
		Help: "Reports reviewed by administrators, by decision.",
	}, []string{"decision"})

	CascadeDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindhub_cascade_deletions_total",
		Help: "Post cascade deletions, by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindhub_reaction_toggles_total",
		Help: "Reaction toggles, by outcome (created, updated, removed).",
	}, []string{"outcome"})

	FollowChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindhub_follow_changes_total",
		Help: "Follow graph mutations, by operation.",
	}, []string{"operation"})

	VisibilityDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindhub_visibility_denials_total",
		Help: "Requests refused by the visibility policy, by action.",
	}, []string{"action"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindhub_notifications_dropped_total",
		Help: "Notifications that could not be stored or published.",
	})
)
