package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReferralMetrics holds the counters of the referral core. A nil *ReferralMetrics is a no-op.
type ReferralMetrics struct {
	// Sponsor links
	SponsorLinksTotal prometheus.CounterVec

	// Commissions
	CommissionsCreatedTotal      prometheus.CounterVec
	CommissionsAmountTotal       prometheus.CounterVec
	CommissionsDuplicateTotal    prometheus.CounterVec
	CommissionsApprovedTotal     prometheus.Counter
	CommissionsApprovedAmount    prometheus.Counter
	ApprovalAnomaliesTotal       prometheus.Counter
	ConversionProcessingDuration prometheus.Histogram

	// Leaderboard
	LeaderboardDuration prometheus.HistogramVec

	// Purchase cache
	PurchaseCacheRequestsTotal prometheus.CounterVec

	// Errors
	DependencyErrorsTotal prometheus.CounterVec
	InvariantViolations   prometheus.CounterVec
}

// NewReferralMetrics registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func NewReferralMetrics(reg prometheus.Registerer) *ReferralMetrics {
	factory := promauto.With(reg)
	return &ReferralMetrics{
		SponsorLinksTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_sponsor_links_total",
				Help: "Sponsor assignment attempts by result",
			},
			[]string{"result"},
		),

		CommissionsCreatedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_commissions_created_total",
				Help: "Commission records created per level",
			},
			[]string{"level"},
		),

		CommissionsAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_commissions_amount_total",
				Help: "Sum of created commission amounts per level",
			},
			[]string{"level"},
		),

		CommissionsDuplicateTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_commissions_duplicate_total",
				Help: "Commission inserts skipped because the conversion was already credited",
			},
			[]string{"level"},
		),

		CommissionsApprovedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "referral_commissions_approved_total",
				Help: "Commissions approved",
			},
		),

		CommissionsApprovedAmount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "referral_commissions_approved_amount_total",
				Help: "Sum of approved commission amounts",
			},
		),

		ApprovalAnomaliesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "referral_approval_anomalies_total",
				Help: "Approvals where the pending balance was smaller than the commission",
			},
		),

		ConversionProcessingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "referral_conversion_processing_duration_seconds",
				Help:    "Time spent distributing commissions for one conversion",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
			},
		),

		LeaderboardDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "referral_leaderboard_duration_seconds",
				Help:    "Leaderboard computation time",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"order_by"},
		),

		PurchaseCacheRequestsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_purchase_cache_requests_total",
				Help: "Purchase total cache lookups by result",
			},
			[]string{"result"},
		),

		DependencyErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_dependency_errors_total",
				Help: "Failed calls to external collaborators",
			},
			[]string{"dependency"},
		),

		InvariantViolations: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_invariant_violations_total",
				Help: "Aborted mutations caused by invariant violations",
			},
			[]string{"kind"},
		),
	}
}

func (m *ReferralMetrics) RecordSponsorLink(result string) {
	if m == nil {
		return
	}
	m.SponsorLinksTotal.WithLabelValues(result).Inc()
}

func (m *ReferralMetrics) RecordCommissionCreated(level int, amount float64) {
	if m == nil {
		return
	}
	l := strconv.Itoa(level)
	m.CommissionsCreatedTotal.WithLabelValues(l).Inc()
	m.CommissionsAmountTotal.WithLabelValues(l).Add(amount)
}

func (m *ReferralMetrics) RecordCommissionDuplicate(level int) {
	if m == nil {
		return
	}
	m.CommissionsDuplicateTotal.WithLabelValues(strconv.Itoa(level)).Inc()
}

func (m *ReferralMetrics) RecordCommissionApproved(amount float64) {
	if m == nil {
		return
	}
	m.CommissionsApprovedTotal.Inc()
	m.CommissionsApprovedAmount.Add(amount)
}

func (m *ReferralMetrics) RecordApprovalAnomaly() {
	if m == nil {
		return
	}
	m.ApprovalAnomaliesTotal.Inc()
}

func (m *ReferralMetrics) RecordConversionDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ConversionProcessingDuration.Observe(seconds)
}

func (m *ReferralMetrics) RecordLeaderboardDuration(orderBy string, seconds float64) {
	if m == nil {
		return
	}
	m.LeaderboardDuration.WithLabelValues(orderBy).Observe(seconds)
}

func (m *ReferralMetrics) RecordDependencyError(dependency string) {
	if m == nil {
		return
	}
	m.DependencyErrorsTotal.WithLabelValues(dependency).Inc()
}

func (m *ReferralMetrics) RecordInvariantViolation(kind string) {
	if m == nil {
		return
	}
	m.InvariantViolations.WithLabelValues(kind).Inc()
}

func (m *ReferralMetrics) RecordPurchaseCache(result string) {
	if m == nil {
		return
	}
	m.PurchaseCacheRequestsTotal.WithLabelValues(result).Inc()
}
