package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrderCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_create_latency_seconds",
		Help:    "Latency of the order creation workflow",
		Buckets: prometheus.DefBuckets,
	})

	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registrations_total",
		Help: "Total number of registered users",
	})

	TokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tokens_issued_total",
		Help: "Total number of access tokens issued",
	})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_failures_total",
		Help: "Total number of failed authentication attempts",
	}, []string{"reason"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
