package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "skillbridge", Name: "http_request_duration_seconds", Help: "HTTP request latency.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)
	Signups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "signups_total", Help: "Completed signups by role."},
		[]string{"role"},
	)
	MentorshipRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "mentorship_requests_total", Help: "Mentorship request transitions by resulting status."},
		[]string{"status"},
	)
	ProjectJoins = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "project_joins_total", Help: "Successful project joins."},
	)
	SkillEnrollments = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "skill_enrollments_total", Help: "Successful skill enrollments."},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "skillbridge", Name: "uploads_total", Help: "Stored uploads by kind."},
		[]string{"kind"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(Signups)
	reg.MustRegister(MentorshipRequests)
	reg.MustRegister(ProjectJoins)
	reg.MustRegister(SkillEnrollments)
	reg.MustRegister(Uploads)
}
