package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/adsp/core/metrics"
)

// PromSink exposes search progress as Prometheus metrics.
type PromSink struct {
	solutions *prometheus.CounterVec
	best      *prometheus.GaugeVec
	phases    *prometheus.HistogramVec
	runs      *prometheus.CounterVec
}

// NewPromSink registers search metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adsp_solutions_total",
		Help: "Improving solutions found by the search",
	}, []string{"instance", "phase", "objective"})
	best := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "adsp_best_objective",
		Help: "Objective values of the last improving solution",
	}, []string{"instance", "metric"})
	phases := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adsp_phase_duration_seconds",
		Help:    "Duration of search phases",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"instance", "objective"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adsp_runs_total",
		Help: "Completed runs by strategy and status",
	}, []string{"strategy", "status"})

	var err error
	if solutions, err = register(reg, solutions); err != nil {
		return nil, err
	}
	if best, err = register(reg, best); err != nil {
		return nil, err
	}
	if phases, err = register(reg, phases); err != nil {
		return nil, err
	}
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	return &PromSink{solutions: solutions, best: best, phases: phases, runs: runs}, nil
}

// register reuses an identical collector registered by an earlier sink.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolution counts the solution and updates the objective gauges.
func (s *PromSink) RecordSolution(rec coremetrics.SolutionRecord) error {
	s.solutions.WithLabelValues(rec.Instance, strconv.Itoa(rec.Phase), rec.Objective).Inc()
	s.best.WithLabelValues(rec.Instance, "makespan").Set(float64(rec.Makespan))
	s.best.WithLabelValues(rec.Instance, "cost").Set(float64(rec.Cost))
	return nil
}

// RecordPhase observes the phase duration.
func (s *PromSink) RecordPhase(rec coremetrics.PhaseRecord) error {
	s.phases.WithLabelValues(rec.Instance, rec.Objective).Observe(rec.Duration.Seconds())
	return nil
}

// RecordRun counts the run outcome.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.Strategy, rec.Status).Inc()
	return nil
}
