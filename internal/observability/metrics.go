package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// PostsCreated counts created posts by kind (original, retweet, quote).
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_posts_created_total",
		Help: "Total number of posts created by kind",
	}, []string{"kind"})

	// LikeToggles counts like toggles by outcome (liked, unliked).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_like_toggles_total",
		Help: "Total number of like toggles by outcome",
	}, []string{"outcome"})

	// FollowToggles counts follow toggles by outcome (followed, unfollowed).
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_follow_toggles_total",
		Help: "Total number of follow toggles by outcome",
	}, []string{"outcome"})

	// NotificationsPublished counts notifications created by verb.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_notifications_published_total",
		Help: "Total number of notifications created by verb",
	}, []string{"verb"})

	// SearchQueries counts search requests by sort mode.
	SearchQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_search_queries_total",
		Help: "Total number of advanced search queries by sort mode",
	}, []string{"sort"})

	// WebSocketConnectionsTotal is the gauge of active notification stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chirp_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})
)
