package server

import (
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hubwatch/panelhost/internal/host"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
)

// wsSurface is the HTTP/WebSocket rendition of a view surface. Content
// is served over HTTP; messages flow over an attached websocket. A
// closed socket means the user closed the panel, which disposes the
// surface.
type wsSurface struct {
	id  string
	log *logging.Logger

	mu          sync.Mutex
	title       string
	html        string
	conn        *websocket.Conn
	gen         int
	disposed    bool
	onMessage   []func([]byte)
	onViewState []func(bool)
	onDispose   []func()
}

func (s *wsSurface) ID() string { return s.id }

func (s *wsSurface) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *wsSurface) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
}

func (s *wsSurface) SetHTML(html string) {
	s.mu.Lock()
	s.html = html
	s.mu.Unlock()
}

func (s *wsSurface) HTML() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html
}

// Reveal nudges an attached client to refocus the panel. Without an
// attached client there is nothing to nudge.
func (s *wsSurface) Reveal() {
	s.Post(map[string]interface{}{"method": "__reveal"})
}

// Post pushes a reply to the attached client. Fire-and-forget: posts
// to a disposed or detached surface are dropped silently.
func (s *wsSurface) Post(reply interface{}) {
	data, err := sonic.Marshal(reply)
	if err != nil {
		s.log.Warn("undeliverable reply", zap.String("view", s.id), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.conn == nil {
		return
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.log.Warn("reply write failed", zap.String("view", s.id), zap.Error(err))
	}
}

func (s *wsSurface) OnMessage(fn func([]byte)) {
	s.mu.Lock()
	s.onMessage = append(s.onMessage, fn)
	s.mu.Unlock()
}

func (s *wsSurface) OnViewState(fn func(bool)) {
	s.mu.Lock()
	s.onViewState = append(s.onViewState, fn)
	s.mu.Unlock()
}

// OnDispose registers a disposal listener. Registering on an already
// disposed surface fires the listener immediately.
func (s *wsSurface) OnDispose(fn func()) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		fn()
		return
	}
	s.onDispose = append(s.onDispose, fn)
	s.mu.Unlock()
}

// Dispose releases the surface and fires disposal listeners exactly
// once. Idempotent.
func (s *wsSurface) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	conn := s.conn
	s.conn = nil
	listeners := s.onDispose
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	for _, fn := range listeners {
		fn()
	}
}

func (s *wsSurface) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// attach binds a websocket client to this surface and returns the
// connection generation. A second client replaces the first; the
// replaced client's read loop must not dispose the surface, so loop
// exits go through release with the generation they were pumping.
func (s *wsSurface) attach(conn *websocket.Conn) int {
	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return gen
}

// release disposes the surface only if gen is still the attached
// connection's generation. A stale generation means another client
// has taken over the surface.
func (s *wsSurface) release(gen int) {
	s.mu.Lock()
	current := s.gen == gen
	s.mu.Unlock()
	if current {
		s.Dispose()
	}
}

// fireMessage delivers one inbound message. Called from the single
// read loop, so per-view arrival order is preserved.
func (s *wsSurface) fireMessage(raw []byte) {
	s.mu.Lock()
	listeners := s.onMessage
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(raw)
	}
}

// fireViewState delivers a visibility change.
func (s *wsSurface) fireViewState(visible bool) {
	s.mu.Lock()
	listeners := s.onViewState
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(visible)
	}
}

// SurfaceRegistry creates and tracks view surfaces by handle id.
type SurfaceRegistry struct {
	mu       sync.RWMutex
	surfaces map[string]*wsSurface
	log      *logging.Logger
}

// NewSurfaceRegistry creates an empty surface registry.
func NewSurfaceRegistry(log *logging.Logger) *SurfaceRegistry {
	return &SurfaceRegistry{
		surfaces: make(map[string]*wsSurface),
		log:      log,
	}
}

// Create allocates a new surface handle.
func (r *SurfaceRegistry) Create(title string) (host.Surface, error) {
	s := &wsSurface{
		id:    uuid.New().String(),
		title: title,
		log:   r.log,
	}
	r.mu.Lock()
	r.surfaces[s.id] = s
	r.mu.Unlock()

	s.OnDispose(func() {
		r.mu.Lock()
		delete(r.surfaces, s.id)
		r.mu.Unlock()
	})
	return s, nil
}

// Get looks up a surface by handle id.
func (r *SurfaceRegistry) Get(id string) (*wsSurface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surfaces[id]
	return s, ok
}

// Count returns the number of live surfaces.
func (r *SurfaceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.surfaces)
}
