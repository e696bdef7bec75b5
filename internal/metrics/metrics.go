// Package metrics exposes Prometheus collectors for domain events, separate
// from the HTTP traffic instrumentation in the middleware package. Collectors
// here track the request lifecycle and the notification fan-out so dashboards
// can watch marketplace health without querying the database.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsCreated counts help requests accepted by POST /requests.
	RequestsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neighbornet_requests_created_total",
		Help: "Total number of help requests created.",
	})

	// RequestsClaimed counts successful open->claimed transitions. Losing
	// claim attempts are not counted.
	RequestsClaimed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neighbornet_requests_claimed_total",
		Help: "Total number of help requests claimed by a volunteer.",
	})

	// RequestsCompleted counts successful completions; exactly one increment
	// per request by construction.
	RequestsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neighbornet_requests_completed_total",
		Help: "Total number of help requests completed.",
	})

	// VolunteerMinutes accumulates reported actual minutes at completion.
	VolunteerMinutes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neighbornet_volunteer_minutes_total",
		Help: "Total volunteer minutes reported on completed requests.",
	})

	// NotificationsSent counts SMS deliveries accepted by the provider,
	// labeled by fan-out trigger ("created" or "claimed").
	NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "neighbornet_notifications_sent_total",
		Help: "Total number of notifications accepted by the SMS provider.",
	}, []string{"event"})

	// NotificationsFailed counts deliveries the provider rejected or that
	// timed out. Failures never affect request state.
	NotificationsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "neighbornet_notifications_failed_total",
		Help: "Total number of notification deliveries that failed.",
	}, []string{"event"})
)

func init() {
	prometheus.MustRegister(
		RequestsCreated,
		RequestsClaimed,
		RequestsCompleted,
		VolunteerMinutes,
		NotificationsSent,
		NotificationsFailed,
	)
}
