package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsRefreshedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_items_refreshed_total",
			Help: "Total number of item price refresh attempts by outcome.",
		},
		[]string{"outcome"},
	)

	priceDropsDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_price_drops_detected_total",
			Help: "Total number of price drops detected during refresh.",
		},
	)

	reservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_reservations_total",
			Help: "Total number of guest reservation operations by action.",
		},
		[]string{"action"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_notifications_total",
			Help: "Total number of alert notifications by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

// Notification result label values.
const (
	notifSent       = "sent"
	notifSuppressed = "suppressed"
)

// Refresh outcome label values.
const (
	outcomeUpdated   = "updated"
	outcomeUnchanged = "unchanged"
	outcomeNoPrice   = "no_price"
	outcomeFailed    = "failed"
)
