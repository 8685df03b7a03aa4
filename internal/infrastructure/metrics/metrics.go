package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the loan lifecycle: creations, status changes, guard
// rejections and condition operations.
type Metrics struct {
	LoansCreated         prometheus.Counter
	TransitionsApplied   *prometheus.CounterVec
	TransitionsRejected  *prometheus.CounterVec
	ConditionOperations  *prometheus.CounterVec
	ConditionsExpired    prometheus.Counter
	TransitionDuration   prometheus.Histogram
	LoanNumberCollisions prometheus.Counter
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoansCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "mortgage_loans_created_total",
			Help: "Total number of loans created",
		}),
		TransitionsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mortgage_loan_transitions_total",
			Help: "Successful loan status transitions by target status",
		}, []string{"to"}),
		TransitionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mortgage_loan_transitions_rejected_total",
			Help: "Rejected loan status transitions by error kind",
		}, []string{"kind"}),
		ConditionOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mortgage_condition_operations_total",
			Help: "Successful condition mutations by operation",
		}, []string{"op"}),
		ConditionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "mortgage_conditions_expired_total",
			Help: "Conditions moved to EXPIRED by the overdue sweep",
		}),
		TransitionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "mortgage_loan_transition_duration_seconds",
			Help:    "Duration of Transition including the unit of work",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		LoanNumberCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "mortgage_loan_number_collisions_total",
			Help: "Loan number candidates rejected because they were taken",
		}),
	}
}

func (m *Metrics) IncLoanCreated() { m.LoansCreated.Inc() }

func (m *Metrics) IncTransition(to string) { m.TransitionsApplied.WithLabelValues(to).Inc() }

func (m *Metrics) IncTransitionRejected(kind string) {
	m.TransitionsRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncConditionOp(op string) { m.ConditionOperations.WithLabelValues(op).Inc() }

func (m *Metrics) AddConditionsExpired(n int) { m.ConditionsExpired.Add(float64(n)) }

func (m *Metrics) IncLoanNumberCollision() { m.LoanNumberCollisions.Inc() }

// ObserveTransition records the duration since start.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
