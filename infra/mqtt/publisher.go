package mqtt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/adsp/core/events"
	"github.com/kilianp07/adsp/core/metrics"
	coremqtt "github.com/kilianp07/adsp/core/mqtt"
	"github.com/kilianp07/adsp/infra/logger"
	"github.com/kilianp07/adsp/internal/eventbus"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// Forward publishes the solution and run events of bus until ctx is done or
// the bus is closed. The returned channel is closed once forwarding stops.
func Forward(ctx context.Context, bus eventbus.EventBus, pub Publisher) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	log := logger.New("mqtt_forward")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(pub, ev); err != nil {
					log.Warnf("forward %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func forward(pub Publisher, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.SolutionEvent:
		if e.Solution == nil {
			return nil
		}
		return pub.PublishSolution(coremqtt.SolutionMessage{
			MessageID: uuid.NewString(),
			RunID:     e.RunID,
			Instance:  e.Instance,
			Phase:     e.Phase,
			Objective: e.Objective,
			Makespan:  e.Solution.Makespan,
			Cost:      e.Solution.Cost,
			ElapsedMS: e.Elapsed.Milliseconds(),
			Optimal:   e.Optimal,
			Timestamp: coremqtt.Now(),
		})
	case events.RunEvent:
		msg := coremqtt.RunMessage{
			MessageID: uuid.NewString(),
			RunID:     e.RunID,
			Instance:  e.Instance,
			Strategy:  e.Strategy,
			Status:    metrics.StatusNoSolution,
			Timestamp: coremqtt.Now(),
		}
		switch {
		case e.Err != nil:
			msg.Status = metrics.StatusFailed
			msg.Error = e.Err.Error()
		case e.Best != nil:
			msg.Status = metrics.StatusSolved
			mk, cost := e.Best.Makespan, e.Best.Cost
			msg.Makespan, msg.Cost = &mk, &cost
		}
		return pub.PublishRun(msg)
	}
	return nil
}

// MockPublisher records messages in memory. It is used in tests.
type MockPublisher struct {
	mu        sync.Mutex
	Solutions []coremqtt.SolutionMessage
	Runs      []coremqtt.RunMessage
	Fail      bool
	// Delay slows every publish down, like a congested broker.
	Delay time.Duration
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

func (m *MockPublisher) PublishSolution(msg coremqtt.SolutionMessage) error {
	time.Sleep(m.Delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("publish failed")
	}
	m.Solutions = append(m.Solutions, msg)
	return nil
}

func (m *MockPublisher) PublishRun(msg coremqtt.RunMessage) error {
	time.Sleep(m.Delay)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errors.New("publish failed")
	}
	m.Runs = append(m.Runs, msg)
	return nil
}

// Counts returns the number of recorded solution and run messages.
func (m *MockPublisher) Counts() (solutions, runs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Solutions), len(m.Runs)
}
