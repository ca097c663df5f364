package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ComponentStatus struct {
	Name      string
	Ready     bool
	StartedAt time.Time
	ReadyAt   time.Time
}

type ReadinessStatus struct {
	Ready      bool
	Components []ComponentStatus
}

// ComponentManager registers components that must become ready before
// background workers start consuming.
type ComponentManager interface {
	// AddComponent registers a component and returns a function marking it ready.
	AddComponent(name string) func()
}

// ReadinessChecker reports the aggregated readiness state.
type ReadinessChecker interface {
	IsReady() bool
	Status() ReadinessStatus
}

// ReadinessWaiter blocks until every registered component is ready.
type ReadinessWaiter interface {
	WaitReady(ctx context.Context) error
}

type component struct {
	name      string
	ready     bool
	startedAt time.Time
	readyAt   time.Time
}

type readiness struct {
	mu         sync.RWMutex
	components map[string]*component
	readyChan  chan struct{}
	readyOnce  sync.Once
	logger     *zap.Logger
}

func newReadiness(logger *zap.Logger) *readiness {
	return &readiness{
		components: make(map[string]*component),
		readyChan:  make(chan struct{}),
		logger:     logger,
	}
}

func (r *readiness) AddComponent(name string) func() {
	if name == "" {
		panic("health: component name must not be empty")
	}

	r.mu.Lock()
	if _, exists := r.components[name]; exists {
		r.logger.Warn("component already registered", zap.String("component", name))
	} else {
		r.components[name] = &component{name: name, startedAt: time.Now()}
	}
	r.mu.Unlock()

	return func() { r.markReady(name) }
}

func (r *readiness) markReady(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comp, exists := r.components[name]
	if !exists || comp.ready {
		return
	}
	comp.ready = true
	comp.readyAt = time.Now()
	r.logger.Debug("component ready",
		zap.String("component", name),
		zap.Duration("startup", comp.readyAt.Sub(comp.startedAt)),
	)

	for _, c := range r.components {
		if !c.ready {
			return
		}
	}

	r.readyOnce.Do(func() {
		close(r.readyChan)
		r.logger.Info("all components are ready", zap.Int("component_count", len(r.components)))
	})
}

func (r *readiness) IsReady() bool {
	r.mu.RLock()
	empty := len(r.components) == 0
	r.mu.RUnlock()
	if empty {
		return true
	}

	select {
	case <-r.readyChan:
		return true
	default:
		return false
	}
}

func (r *readiness) Status() ReadinessStatus {
	ready := r.IsReady()

	r.mu.RLock()
	defer r.mu.RUnlock()

	status := ReadinessStatus{
		Ready:      ready,
		Components: make([]ComponentStatus, 0, len(r.components)),
	}
	for _, comp := range r.components {
		status.Components = append(status.Components, ComponentStatus{
			Name:      comp.name,
			Ready:     comp.ready,
			StartedAt: comp.startedAt,
			ReadyAt:   comp.readyAt,
		})
	}
	sort.Slice(status.Components, func(i, j int) bool {
		return status.Components[i].Name < status.Components[j].Name
	})
	return status
}

// WaitReady blocks until all components are ready or ctx is cancelled.
// With no registered components it returns immediately.
func (r *readiness) WaitReady(ctx context.Context) error {
	if r.IsReady() {
		return nil
	}
	select {
	case <-r.readyChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
