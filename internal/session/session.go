package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hubwatch/panelhost/internal/bootstrap"
	"github.com/hubwatch/panelhost/internal/host"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
	"github.com/hubwatch/panelhost/internal/infrastructure/monitoring"
	"github.com/hubwatch/panelhost/internal/router"
	"github.com/hubwatch/panelhost/internal/shared/types"
	"github.com/hubwatch/panelhost/internal/statestore"
)

// ErrRootExists reports an attempt to create a second root view. This
// is a programming error: Show reveals a live root instead of creating
// one, so the guard should be unreachable.
var ErrRootExists = errors.New("session root view already exists")

// Deps bundles the collaborators a session needs.
type Deps struct {
	Factory host.SurfaceFactory
	Store   *statestore.Adapter
	Builder *bootstrap.Builder
	Assets  bootstrap.Assets
	Router  *router.Router
	Config  types.RuntimeConfig
	Metrics *monitoring.Metrics
	Log     *logging.Logger
}

// Session owns the root view and the child views of one monitored hub.
// Surfaces themselves belong to the hosting runtime; the session holds
// non-owning handles and disposes each exactly once during Cleanup.
type Session struct {
	hub       string
	deps      Deps
	onDispose func()

	// op serializes Show and OpenChild so concurrent callers never
	// race the root-exists and cleaned checks. Cleanup stays outside
	// it: dispose listeners re-enter Cleanup.
	op sync.Mutex

	mu       sync.Mutex
	root     host.Surface
	children map[string]childView // surface id -> child
	visible  bool
	ready    bool
	cleaned  bool
}

// childView pairs a child surface with the entity it drills into.
type childView struct {
	surface  host.Surface
	identity string
}

// New creates a session for a hub. onDispose is invoked once on full
// teardown.
func New(hub string, deps Deps, onDispose func()) *Session {
	return &Session{
		hub:       hub,
		deps:      deps,
		onDispose: onDispose,
		children:  make(map[string]childView),
	}
}

// Hub returns the hub identifier.
func (s *Session) Hub() string { return s.hub }

// Show reveals the root view, creating it on first call. Idempotent;
// concurrent callers serialize and exactly one creates the root. A
// cleaned session stays inert: the registry hands out a fresh session
// for the hub instead.
func (s *Session) Show(ctx context.Context) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return fmt.Errorf("session %q is cleaned up", s.hub)
	}
	if s.root != nil && !s.root.Disposed() {
		root := s.root
		s.visible = true
		s.mu.Unlock()
		root.Reveal()
		return nil
	}
	s.mu.Unlock()

	return s.createRoot(ctx)
}

func (s *Session) createRoot(_ context.Context) error {
	state, _, err := s.deps.Store.Read(s.hub)
	if err != nil {
		return fmt.Errorf("load persisted state: %w", err)
	}

	html, err := s.deps.Builder.Build(state, s.deps.Config, "", s.deps.Assets)
	if err != nil {
		return fmt.Errorf("build root payload: %w", err)
	}

	surface, err := s.deps.Factory.Create(s.hub)
	if err != nil {
		return fmt.Errorf("create root surface: %w", err)
	}

	s.mu.Lock()
	if s.cleaned {
		// Cleanup won the race; the surface must not outlive it.
		s.mu.Unlock()
		surface.Dispose()
		return fmt.Errorf("session %q is cleaned up", s.hub)
	}
	if s.root != nil && !s.root.Disposed() {
		s.mu.Unlock()
		surface.Dispose()
		return ErrRootExists
	}
	s.root = surface
	s.visible = true
	s.ready = false
	s.mu.Unlock()

	// Handlers before content, so the view's first messages are not lost.
	s.attach(surface, "")
	surface.OnViewState(func(visible bool) {
		s.mu.Lock()
		s.visible = visible
		s.mu.Unlock()
	})
	surface.OnDispose(func() {
		if s.deps.Metrics != nil {
			s.deps.Metrics.ViewsActive.Dec()
		}
		// Root disposal tears down the whole session.
		s.Cleanup()
	})
	surface.SetHTML(html)

	if s.deps.Metrics != nil {
		s.deps.Metrics.ViewsActive.Inc()
		s.deps.Metrics.ViewsOpened.Inc()
	}
	s.deps.Log.Info("root view created",
		zap.String("hub", s.hub),
		zap.String("view", surface.ID()))
	return nil
}

// OpenChild creates a drill-down child view for an entity. Children
// never inherit the root's persisted state.
func (s *Session) OpenChild(_ context.Context, identity string) error {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	if s.cleaned || s.root == nil {
		s.mu.Unlock()
		return fmt.Errorf("session %q is not showing", s.hub)
	}
	s.mu.Unlock()

	html, err := s.deps.Builder.Build(types.StateRecord{}, s.deps.Config, identity, s.deps.Assets)
	if err != nil {
		return fmt.Errorf("build child payload: %w", err)
	}

	surface, err := s.deps.Factory.Create(fmt.Sprintf("Instance '%s'", identity))
	if err != nil {
		return fmt.Errorf("create child surface: %w", err)
	}

	id := surface.ID()
	s.mu.Lock()
	if s.cleaned {
		// Cleanup won the race; the surface must not outlive it.
		s.mu.Unlock()
		surface.Dispose()
		return fmt.Errorf("session %q is not showing", s.hub)
	}
	s.children[id] = childView{surface: surface, identity: identity}
	s.mu.Unlock()

	s.attach(surface, identity)
	surface.OnDispose(func() {
		s.mu.Lock()
		_, tracked := s.children[id]
		delete(s.children, id)
		s.mu.Unlock()
		if tracked && s.deps.Metrics != nil {
			s.deps.Metrics.ViewsActive.Dec()
		}
	})
	surface.SetHTML(html)

	if s.deps.Metrics != nil {
		s.deps.Metrics.ViewsActive.Inc()
		s.deps.Metrics.ViewsOpened.Inc()
	}
	s.deps.Log.Info("child view opened",
		zap.String("hub", s.hub),
		zap.String("identity", identity),
		zap.String("view", id))
	return nil
}

// attach wires the router to a surface, scoped so replies and child
// recursion target the originating view.
func (s *Session) attach(surface host.Surface, identity string) {
	scope := &router.Scope{Session: s, Identity: identity, Surface: surface}
	surface.OnMessage(func(raw []byte) {
		s.deps.Router.Dispatch(context.Background(), scope, raw)
	})
}

// Cleanup disposes every tracked view, children before the root, and
// invokes the teardown callback. Idempotent and safe after the runtime
// has already disposed some surfaces.
func (s *Session) Cleanup() {
	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return
	}
	s.cleaned = true
	// The child map is left for each dispose listener to delete its
	// own entry, so listener bookkeeping stays balanced.
	children := make([]host.Surface, 0, len(s.children))
	for _, child := range s.children {
		children = append(children, child.surface)
	}
	root := s.root
	s.root = nil
	s.visible = false
	s.ready = false
	onDispose := s.onDispose
	s.onDispose = nil
	s.mu.Unlock()

	// Dispose outside the lock: listeners re-enter the session.
	for _, child := range children {
		if !child.Disposed() {
			child.Dispose()
		}
	}
	if root != nil && !root.Disposed() {
		root.Dispose()
	}

	if onDispose != nil {
		onDispose()
	}
	s.deps.Log.Info("session cleaned up", zap.String("hub", s.hub))
}

// MarkReady records the root view's liveness signal.
func (s *Session) MarkReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
}

// Ready reports whether a view has signaled IAmReady since Show.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// IsVisible reports the root view's last known visibility. Pure cached
// read; updated by the runtime's view-state events.
func (s *Session) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// HandleViewState feeds a visibility change from the runtime's event
// stream.
func (s *Session) HandleViewState(visible bool) {
	s.mu.Lock()
	s.visible = visible
	s.mu.Unlock()
}

// ViewCount returns the number of tracked views including the root.
func (s *Session) ViewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.children)
	if s.root != nil {
		n++
	}
	return n
}

// Views describes the tracked views for status reporting.
func (s *Session) Views() []types.ViewInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]types.ViewInfo, 0, len(s.children)+1)
	if s.root != nil {
		views = append(views, types.ViewInfo{
			ID:    s.root.ID(),
			Title: s.root.Title(),
			Root:  true,
		})
	}
	for _, child := range s.children {
		views = append(views, types.ViewInfo{
			ID:       child.surface.ID(),
			Title:    child.surface.Title(),
			Identity: child.identity,
		})
	}
	return views
}

// RootID returns the root surface id, or "" when no root is showing.
func (s *Session) RootID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return ""
	}
	return s.root.ID()
}
