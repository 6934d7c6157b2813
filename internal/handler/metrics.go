package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_logins_total",
		Help: "Total number of successful logins.",
	})

	deletionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "user_deletions_total",
		Help: "Total number of soft-deleted accounts.",
	})

	certificateVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_certificate_verifications_total",
			Help: "Total number of certificate verification attempts by status.",
		},
		[]string{"status"},
	)

	serviceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_service_errors_total",
			Help: "Total number of failed requests by error kind.",
		},
		[]string{"kind"},
	)
)
