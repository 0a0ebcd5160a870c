package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubwatch/panelhost/internal/bootstrap"
	"github.com/hubwatch/panelhost/internal/host"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
	"github.com/hubwatch/panelhost/internal/infrastructure/monitoring"
	"github.com/hubwatch/panelhost/internal/router"
	"github.com/hubwatch/panelhost/internal/shared/types"
	"github.com/hubwatch/panelhost/internal/statestore"
)

// stubSurface is an in-memory Surface with listener plumbing.
type stubSurface struct {
	mu          sync.Mutex
	id          string
	title       string
	html        string
	revealed    int
	disposed    bool
	disposals   int
	posts       []interface{}
	onMessage   []func([]byte)
	onViewState []func(bool)
	onDispose   []func()
}

func (s *stubSurface) ID() string { return s.id }
func (s *stubSurface) Title() string { return s.title }
func (s *stubSurface) SetTitle(title string) { s.title = title }
func (s *stubSurface) SetHTML(html string) { s.html = html }
func (s *stubSurface) HTML() string { return s.html }
func (s *stubSurface) Reveal() { s.revealed++ }

func (s *stubSurface) Post(reply interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.posts = append(s.posts, reply)
}

func (s *stubSurface) OnMessage(fn func([]byte)) { s.onMessage = append(s.onMessage, fn) }
func (s *stubSurface) OnViewState(fn func(bool)) { s.onViewState = append(s.onViewState, fn) }

func (s *stubSurface) OnDispose(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.onDispose = append(s.onDispose, fn)
}

func (s *stubSurface) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.disposals++
	listeners := s.onDispose
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (s *stubSurface) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// receive simulates an inbound message from the rendered view.
func (s *stubSurface) receive(raw string) {
	for _, fn := range s.onMessage {
		fn([]byte(raw))
	}
}

type stubFactory struct {
	created []*stubSurface
	err     error
	next    int
	hook    func() // runs inside Create, before the surface exists
}

func (f *stubFactory) Create(title string) (host.Surface, error) {
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	f.next++
	surface := &stubSurface{id: fmt.Sprintf("view-%d", f.next), title: title}
	f.created = append(f.created, surface)
	return surface, nil
}

type memStorage struct {
	records map[string]map[string]interface{}
}

func (m *memStorage) Get(key string) (map[string]interface{}, bool, error) {
	record, ok := m.records[key]
	return record, ok, nil
}

func (m *memStorage) Set(key string, record map[string]interface{}) error {
	if m.records == nil {
		m.records = make(map[string]map[string]interface{})
	}
	m.records[key] = record
	return nil
}

type pathResolver struct{}

func (pathResolver) ResolveAsset(path string) string { return "/assets/" + path }

type noopDialog struct{}

func (noopDialog) PromptSave(context.Context, string, map[string][]string) (string, bool, error) {
	return "", false, nil
}

type noopNotifier struct{}

func (noopNotifier) Warn(string) {}
func (noopNotifier) Error(string) {}

type harness struct {
	factory  *stubFactory
	storage  *memStorage
	session  *Session
	disposed int
}

func newHarness(t *testing.T, hub string) *harness {
	t.Helper()

	h := &harness{
		factory: &stubFactory{},
		storage: &memStorage{},
	}

	store := statestore.NewAdapter(h.storage)
	metrics := monitoring.NewMetrics()
	log := logging.NewNop()
	r := router.New(store, noopDialog{}, noopNotifier{}, nil, metrics, log)

	deps := Deps{
		Factory: h.factory,
		Store:   store,
		Builder: bootstrap.NewBuilder(pathResolver{}, nil),
		Assets:  bootstrap.Assets{},
		Router:  r,
		Config:  types.RuntimeConfig{Theme: "dark"},
		Metrics: metrics,
		Log:     log,
	}
	h.session = New(hub, deps, func() { h.disposed++ })
	return h
}

func (h *harness) root(t *testing.T) *stubSurface {
	t.Helper()
	require.NotEmpty(t, h.factory.created)
	return h.factory.created[0]
}

func TestShowCreatesRoot(t *testing.T) {
	h := newHarness(t, "hub-a")
	h.storage.records = map[string]map[string]interface{}{
		statestore.GlobalStateKey: {
			"hub-a": map[string]interface{}{"myKey": "2023-01-01"},
		},
	}

	require.NoError(t, h.session.Show(context.Background()))

	root := h.root(t)
	assert.Equal(t, "hub-a", root.Title())
	assert.Contains(t, root.html,
		`var OrchestrationIdFromVsCode="",StateFromVsCode={"myKey":"2023-01-01"};`)
	assert.True(t, h.session.IsVisible())
	assert.Equal(t, 1, h.session.ViewCount())
}

func TestShowIdempotent(t *testing.T) {
	h := newHarness(t, "hub-a")

	require.NoError(t, h.session.Show(context.Background()))
	require.NoError(t, h.session.Show(context.Background()))

	assert.Len(t, h.factory.created, 1)
	assert.Equal(t, 1, h.root(t).revealed)
}

func TestShowConcurrent(t *testing.T) {
	h := newHarness(t, "hub-a")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.session.Show(context.Background())
		}(i)
	}
	wg.Wait()

	// Exactly one caller creates the root; the rest reveal it.
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, h.factory.created, 1)
	assert.Equal(t, 1, h.session.ViewCount())
}

func TestShowAfterCleanupStaysInert(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))
	h.session.Cleanup()

	assert.Error(t, h.session.Show(context.Background()))
	assert.Len(t, h.factory.created, 1)
	assert.Equal(t, 0, h.session.ViewCount())
}

func TestOpenChildDuringCleanup(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))

	// Cleanup lands while the child surface is being created; the
	// orphan surface must be disposed, not leaked.
	h.factory.hook = func() { h.session.Cleanup() }

	assert.Error(t, h.session.OpenChild(context.Background(), "node-2"))

	require.Len(t, h.factory.created, 2)
	assert.True(t, h.factory.created[1].Disposed())
	assert.Equal(t, 0, h.session.ViewCount())
}

func TestReadySignal(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))

	assert.False(t, h.session.Ready())
	h.root(t).receive(`{"method":"IAmReady"}`)

	assert.True(t, h.session.Ready())
	assert.True(t, h.session.IsVisible())
}

func TestOpenChild(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))

	require.NoError(t, h.session.OpenChild(context.Background(), "node-7"))

	require.Len(t, h.factory.created, 2)
	child := h.factory.created[1]
	assert.Equal(t, "Instance 'node-7'", child.Title())
	assert.Contains(t, child.html,
		`var OrchestrationIdFromVsCode="node-7",StateFromVsCode={};`)
	assert.Equal(t, 2, h.session.ViewCount())
}

func TestOpenChildViaMessage(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))

	h.root(t).receive(`{"method":"OpenInNewWindow","url":"node-9"}`)

	assert.Equal(t, 2, h.session.ViewCount())
	assert.Equal(t, "Instance 'node-9'", h.factory.created[1].Title())
}

func TestChildDisposalRemovesOnlyChild(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))
	require.NoError(t, h.session.OpenChild(context.Background(), "a"))
	require.NoError(t, h.session.OpenChild(context.Background(), "b"))

	h.factory.created[1].Dispose()

	assert.Equal(t, 2, h.session.ViewCount())
	assert.False(t, h.root(t).Disposed())
	assert.False(t, h.factory.created[2].Disposed())
	assert.Equal(t, 0, h.disposed)
}

func TestRootDisposalTearsDownSession(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))
	require.NoError(t, h.session.OpenChild(context.Background(), "a"))

	h.root(t).Dispose()

	assert.Equal(t, 0, h.session.ViewCount())
	assert.True(t, h.factory.created[1].Disposed())
	assert.Equal(t, 1, h.disposed)
	assert.False(t, h.session.IsVisible())
}

func TestCleanupIdempotent(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))
	require.NoError(t, h.session.OpenChild(context.Background(), "a"))

	h.session.Cleanup()
	h.session.Cleanup()

	assert.Equal(t, 0, h.session.ViewCount())
	assert.Equal(t, 1, h.disposed)
	for _, surface := range h.factory.created {
		assert.True(t, surface.Disposed())
		assert.Equal(t, 1, surface.disposals)
	}
}

func TestOpenChildBeforeShow(t *testing.T) {
	h := newHarness(t, "hub-a")
	assert.Error(t, h.session.OpenChild(context.Background(), "a"))
}

func TestViewStateUpdates(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))
	root := h.root(t)

	for _, fn := range root.onViewState {
		fn(false)
	}
	assert.False(t, h.session.IsVisible())

	for _, fn := range root.onViewState {
		fn(true)
	}
	assert.True(t, h.session.IsVisible())
}

func TestUnknownMethodLeavesRegistryUntouched(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))

	h.root(t).receive(`{"method":"NotAThing","url":"x"}`)

	assert.Equal(t, 1, h.session.ViewCount())
	assert.Nil(t, h.storage.records[statestore.GlobalStateKey])
}

func TestPersistStateViaMessage(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))

	h.root(t).receive(`{"method":"PersistState","key":"k","data":"v"}`)

	slice := h.storage.records[statestore.GlobalStateKey]["hub-a"].(map[string]interface{})
	assert.Equal(t, "v", slice["k"])
}

func TestSurfaceFactoryFailure(t *testing.T) {
	h := newHarness(t, "hub-a")
	h.factory.err = errors.New("runtime refused")

	assert.Error(t, h.session.Show(context.Background()))
	assert.Equal(t, 0, h.session.ViewCount())
}

func TestViewsReporting(t *testing.T) {
	h := newHarness(t, "hub-a")
	require.NoError(t, h.session.Show(context.Background()))
	require.NoError(t, h.session.OpenChild(context.Background(), "node-1"))

	views := h.session.Views()
	require.Len(t, views, 2)
	assert.True(t, views[0].Root)
	assert.Equal(t, "", views[0].Identity)
	assert.Equal(t, "node-1", views[1].Identity)
}
