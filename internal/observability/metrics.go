package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommentsCreated counts created comments by kind (top_level or reply).
	CommentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_comments_created_total",
		Help: "Total number of comments created",
	}, []string{"kind"})

	// CommentsDeleted counts soft-deleted comments by kind.
	CommentsDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_comments_deleted_total",
		Help: "Total number of comments soft-deleted",
	}, []string{"kind"})

	// PlaceholderRenders counts deleted top-level comments rendered as
	// placeholders because they still had visible replies.
	PlaceholderRenders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agora_comment_placeholder_renders_total",
		Help: "Total number of deleted comments rendered as placeholders",
	})
)
