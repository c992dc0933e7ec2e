package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilterInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_filter_invocations_total",
			Help: "Total number of filter evaluations per entity",
		},
		[]string{"entity"},
	)

	FilterUnknownDateType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_filter_unknown_date_type_total",
			Help: "Date filters with an unrecognised type, passed through unfiltered",
		},
		[]string{"entity"},
	)

	StoreRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "crm_store_refresh_duration_seconds",
			Help: "Duration of a collection refresh in seconds",
		},
		[]string{"collection"},
	)

	StoreRefreshFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_store_refresh_failures_total",
			Help: "Total number of failed collection refreshes",
		},
		[]string{"collection"},
	)

	StoreCollectionSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_store_collection_size",
			Help: "Number of records held per collection",
		},
		[]string{"collection"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)
