package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/aethra/acueducto/internal/logging"
	"github.com/aethra/acueducto/internal/metrics"
	"github.com/sirupsen/logrus"
)

// ErrStaleLoad is returned by Select when a newer Select started before this
// one finished. Its result was discarded.
var ErrStaleLoad = stderrors.New("engine: load superseded by a newer selection")

// Session is the stateful side of one dashboard: the current view state and the
// loaded dataset. Loads are tagged with a generation so a slow response for a
// previous dataset never replaces a newer one.
type Session struct {
	loader *Loader

	mu         sync.Mutex
	state      ViewState
	data       Dataset
	loadErr    error
	generation uint64
}

// NewSession starts with kind selected but not loaded
func NewSession(loader *Loader, kind Kind, pageSize int) *Session {
	return &Session{
		loader: loader,
		state:  NewViewState(kind, pageSize),
	}
}

// State returns the current view state
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select switches to kind and loads it. Switching to the already selected kind
// reloads it, which is how a failed load is retried.
func (s *Session) Select(ctx context.Context, kind Kind) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if kind != s.state.Dataset {
		s.state = s.state.WithDataset(kind)
	} else {
		s.state = s.state.WithPage(1)
	}
	s.loadErr = nil
	s.mu.Unlock()

	ds, err := s.loader.Load(ctx, kind)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.loader.Metrics().RecordLoad(string(kind), metrics.OutcomeStale)
		logging.Get().WithFields(logrus.Fields{
			"dataset":    kind,
			"generation": gen,
			"current":    s.generation,
		}).Debug("session: discarding stale load")
		return ErrStaleLoad
	}

	if err != nil {
		s.data = nil
		s.loadErr = err
		s.loader.Metrics().RecordLoad(string(kind), metrics.OutcomeError)
		logging.LogError("engine", "Session.Select", fmt.Sprintf("loading %s", kind), nil, err)
		return err
	}
	s.data = ds
	s.loadErr = nil
	s.loader.Metrics().RecordLoad(string(kind), metrics.OutcomeOK)
	return nil
}

// Update applies a state transition such as ViewState.WithSearch. The dataset
// cannot be changed this way; use Select.
func (s *Session) Update(transition func(ViewState) ViewState) ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := transition(s.state)
	next.Dataset = s.state.Dataset
	s.state = next
	return s.state
}

// Render produces the view for the current state. Before the first load, and
// after a failed one, the view is empty; only the latter sets the error flag.
func (s *Session) Render() View {
	s.mu.Lock()
	state, data, loadErr := s.state, s.data, s.loadErr
	s.mu.Unlock()

	if data == nil || data.Kind() != state.Dataset {
		return EmptyView(state.Dataset, state.Query(), state.PageSize, loadErr)
	}
	return data.View(state.Query(), state.Page, state.PageSize)
}
