package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ItemsListed counts items listed or relisted.
var ItemsListed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_items_listed_total",
		Help: "Total number of items listed or relisted",
	},
)

// ItemsDelisted counts items taken off sale by their owner.
var ItemsDelisted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_items_delisted_total",
		Help: "Total number of items delisted",
	},
)

// PurchasesSettled counts settled purchases by payment path (native/asset)
var PurchasesSettled = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "marketplace_purchases_settled_total",
		Help: "Total number of settled purchases",
	},
	[]string{"path"},
)

// FeesCollected accumulates fee amounts routed to the collector
var FeesCollected = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "marketplace_fees_collected_units_total",
		Help: "Total fee amount sent to the collector address",
	},
)

func init() {
	prometheus.MustRegister(ItemsListed, ItemsDelisted)
	prometheus.MustRegister(PurchasesSettled, FeesCollected)
}
