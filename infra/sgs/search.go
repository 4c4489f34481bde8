package sgs

import (
	"context"
	"math"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/adsp/core/engine"
)

// failure statistics are one counter per interval
const counterSize = 8

type search struct {
	e      *Engine
	p      *problem
	cancel context.CancelFunc

	solutions chan []engine.IntervalValue
	done      chan struct{}
	err       error
	ended     bool

	mu   sync.Mutex
	best []engine.IntervalValue
	obj  int

	fails    atomic.Int64
	failures []atomic.Int64 // per interval, failure-directed statistics
}

func (e *Engine) launch(parent context.Context, p *problem) *search {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if p.params.TimeLimit > 0 {
		ctx, cancel = context.WithTimeout(parent, p.params.TimeLimit)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	s := &search{
		e:         e,
		p:         p,
		cancel:    cancel,
		solutions: make(chan []engine.IntervalValue),
		done:      make(chan struct{}),
		obj:       math.MaxInt,
		failures:  make([]atomic.Int64, len(p.specs)),
	}
	workers := max(1, p.params.Workers)
	focused := 0
	if p.params.FailureDirectedEmphasis > 0 {
		focused = int(math.Ceil(p.params.FailureDirectedEmphasis))
		if m := p.params.FailureDirectedMaxMemory; m > 0 && len(p.specs)*counterSize > m {
			e.log.Warnf("failure statistics need %d bytes, over the %d byte cap; failure-directed search disabled",
				len(p.specs)*counterSize, m)
			focused = 0
		}
	}
	e.log.Debugw("search started", map[string]any{
		"intervals": len(p.specs),
		"tasks":     len(p.tasks),
		"workers":   workers,
		"focused":   focused,
		"mode":      p.params.Search.String(),
		"bound":     p.bound,
	})

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			return s.work(gctx, w, w < focused)
		})
	}
	go func() {
		s.err = g.Wait()
		cancel()
		close(s.done)
	}()
	return s
}

func (s *search) work(ctx context.Context, worker int, focused bool) error {
	p := s.p
	rng := rand.New(rand.NewSource(s.e.opts.Seed + int64(worker)*7919))
	for iter := 0; ; iter++ {
		if ctx.Err() != nil {
			return nil
		}
		c := construction{noise: make([]float64, len(p.specs))}
		for i := range c.noise {
			c.noise[i] = rng.Float64()
		}
		c.patient = p.costDriven && rng.Intn(2) == 0

		switch {
		case iter == 0 && len(p.start) > 0:
			if worker == 0 {
				if val, ok := replay(p); ok {
					s.offer(ctx, val)
				}
			}
			c.keys, c.prefer = startingKeys(p)
		case p.params.Search == engine.SearchDepthFirst:
			if best := s.incumbent(); best != nil {
				c.keys = incumbentKeys(p, best, rng)
			} else {
				c.keys = randomKeys(p, rng)
			}
		default:
			c.keys = randomKeys(p, rng)
		}
		if focused {
			s.bias(c.keys)
		}

		sch := newSchedule(p)
		failed, ok := sch.build(c)
		if ok && !withinLimits(p, sch.val) {
			ok = false
		}
		if !ok {
			n := s.fails.Add(1)
			if failed >= 0 {
				s.blame(sch, failed)
			}
			if limit := p.params.FailLimit; limit > 0 && n >= int64(limit) {
				s.cancel()
				return nil
			}
			continue
		}
		s.offer(ctx, sch.val)
	}
}

// offer publishes val if it improves the incumbent. It stops the search once
// the static bound is reached, or after the first solution when there is no
// objective.
func (s *search) offer(ctx context.Context, val []engine.IntervalValue) {
	obj := 0
	if s.p.hasObjective {
		obj = evaluate(s.p.objective, val)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj >= s.obj {
		return
	}
	select {
	case s.solutions <- val:
	case <-ctx.Done():
		return
	}
	s.best, s.obj = val, obj
	if !s.p.hasObjective || obj <= s.p.bound {
		s.cancel()
	}
}

func (s *search) incumbent() []engine.IntervalValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best
}

// blame records a failure on the task that could not be placed and on the
// unplaced tasks sharing a cumul with it, which could have compensated.
func (s *search) blame(sch *schedule, failed engine.Interval) {
	s.failures[failed].Add(1)
	for _, ci := range s.p.cumulOf[failed] {
		for _, t := range s.p.tasks {
			if t != failed && !sch.placed[t] && slices.Contains(s.p.cumulOf[t], ci) {
				s.failures[t].Add(1)
			}
		}
	}
}

// bias moves frequently failing tasks earlier.
func (s *search) bias(keys []float64) {
	for _, t := range s.p.tasks {
		keys[t] -= float64(s.failures[t].Load()) * s.p.meanLen
	}
}

func (s *search) Next() (bool, error) {
	if s.ended {
		return false, nil
	}
	select {
	case val := <-s.solutions:
		s.e.current = val
		if s.p.hasObjective {
			obj := evaluate(s.p.objective, val)
			s.e.gap = 0
			if obj > 0 {
				s.e.gap = float64(obj-s.p.bound) / float64(obj)
			}
		}
		return true, nil
	case <-s.done:
		s.ended = true
		if s.err != nil {
			return false, engine.Wrap("search", s.err)
		}
		return false, nil
	}
}

func (s *search) End() error {
	s.cancel()
	<-s.done
	s.ended = true
	if s.e.active == s {
		s.e.active = nil
	}
	s.e.log.Debugw("search ended", map[string]any{"fails": s.fails.Load(), "best": s.obj})
	return nil
}
