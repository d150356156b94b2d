// Package metrics exposes the portal's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OTPRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_otp_requests_total",
			Help: "Total number of one-time code requests",
		},
	)

	OTPVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_otp_verifications_total",
			Help: "Total number of one-time code verification attempts",
		},
		[]string{"result"},
	)

	SessionRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_session_refreshes_total",
			Help: "Total number of session refresh attempts",
		},
		[]string{"result"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_submissions_total",
			Help: "Total number of application submission attempts",
		},
		[]string{"result"},
	)

	UploadRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_upload_retries_total",
			Help: "Total number of retried document uploads",
		},
		[]string{"result"},
	)
)
