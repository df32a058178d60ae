package metrics

import "github.com/prometheus/client_golang/prometheus"

// Shop-level metrics, recorded by the service layer.
var (
	// PurchasesTotal counts completed purchases.
	PurchasesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bazaar",
		Subsystem: "shop",
		Name:      "purchases_total",
		Help:      "Total completed purchases.",
	})

	// RevenueTotal accumulates settled purchase value.
	RevenueTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bazaar",
		Subsystem: "shop",
		Name:      "revenue_total",
		Help:      "Total settled purchase value.",
	})

	// ImportRows counts processed stock import rows by outcome.
	ImportRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Subsystem: "shop",
		Name:      "import_rows_total",
		Help:      "Total stock import rows processed.",
	}, []string{"status"}) // "added" | "skipped"

	// BroadcastMessages counts broadcast deliveries by outcome.
	BroadcastMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Subsystem: "shop",
		Name:      "broadcast_messages_total",
		Help:      "Total broadcast messages by delivery outcome.",
	}, []string{"status"}) // "sent" | "blocked" | "failed"

	// BotUpdates counts handled Telegram updates by kind.
	BotUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Subsystem: "bot",
		Name:      "updates_total",
		Help:      "Total Telegram updates handled.",
	}, []string{"kind"}) // "message" | "callback" | "other"
)

func init() {
	DefaultRegistry.MustRegister(
		PurchasesTotal,
		RevenueTotal,
		ImportRows,
		BroadcastMessages,
		BotUpdates,
	)
}
