package router

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/hubwatch/panelhost/internal/host"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
	"github.com/hubwatch/panelhost/internal/infrastructure/monitoring"
	"github.com/hubwatch/panelhost/internal/shared/types"
	"github.com/hubwatch/panelhost/internal/statestore"
)

// SessionOps is the slice of session behavior handlers may invoke.
type SessionOps interface {
	Hub() string
	MarkReady()
	OpenChild(ctx context.Context, identity string) error
}

// Backend is the monitored backend collaborator. Calls are opaque
// pass-throughs: request in, reply out, no interpretation. handled is
// false when the backend does not recognize the method.
type Backend interface {
	Call(ctx context.Context, method string, params map[string]interface{}) (reply interface{}, handled bool, err error)
}

// Scope identifies the originating view of one dispatch, so replies and
// child-view recursion target the right surface.
type Scope struct {
	Session  SessionOps
	Identity string
	Surface  host.Surface
}

// Handler processes one request within a view scope.
type Handler func(ctx context.Context, scope *Scope, req *types.Request) error

// Router maps inbound method names to handlers. Unknown methods that
// the backend does not claim are a no-op, tolerating protocol skew
// between host and view versions.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler

	store    *statestore.Adapter
	dialog   host.SaveDialog
	notifier host.Notifier
	backend  Backend
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// New creates a router with the built-in method table installed.
func New(store *statestore.Adapter, dialog host.SaveDialog, notifier host.Notifier, backend Backend, metrics *monitoring.Metrics, log *logging.Logger) *Router {
	r := &Router{
		handlers: make(map[string]Handler),
		store:    store,
		dialog:   dialog,
		notifier: notifier,
		backend:  backend,
		metrics:  metrics,
		log:      log,
	}
	r.Handle("IAmReady", r.handleReady)
	r.Handle("PersistState", r.handlePersistState)
	r.Handle("OpenInNewWindow", r.handleOpenInNewWindow)
	r.Handle("SaveAs", r.handleSaveAs)
	return r
}

// Handle registers a handler for a method, replacing any existing one.
func (r *Router) Handle(method string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = h
}

// Dispatch decodes and routes one raw inbound message. Errors never
// escape: a failed request is logged and dropped, the session stays
// usable.
func (r *Router) Dispatch(ctx context.Context, scope *Scope, raw []byte) {
	var req types.Request
	if err := sonic.Unmarshal(raw, &req); err != nil {
		r.log.Warn("malformed request dropped",
			zap.String("hub", scope.Session.Hub()),
			zap.Error(err))
		return
	}
	r.DispatchRequest(ctx, scope, &req)
}

// DispatchRequest routes one decoded request.
func (r *Router) DispatchRequest(ctx context.Context, scope *Scope, req *types.Request) {
	if r.metrics != nil {
		r.metrics.DispatchTotal.WithLabelValues(req.Method).Inc()
	}

	r.mu.RLock()
	handler, ok := r.handlers[req.Method]
	r.mu.RUnlock()

	if !ok {
		r.forward(ctx, scope, req)
		return
	}

	if err := handler(ctx, scope, req); err != nil {
		if r.metrics != nil {
			r.metrics.DispatchErrors.WithLabelValues(req.Method).Inc()
		}
		r.log.Error("request failed",
			zap.String("hub", scope.Session.Hub()),
			zap.String("method", req.Method),
			zap.String("identity", scope.Identity),
			zap.Error(err))
	}
}

// forward delegates an unmatched method to the backend collaborator and
// pushes its reply, if any, back to the originating view. Methods the
// backend does not claim are dropped silently.
func (r *Router) forward(ctx context.Context, scope *Scope, req *types.Request) {
	if r.backend == nil {
		r.log.Debug("no handler for method", zap.String("method", req.Method))
		return
	}

	reply, handled, err := r.backend.Call(ctx, req.Method, req.Params)
	if err != nil {
		if r.metrics != nil {
			r.metrics.DispatchErrors.WithLabelValues(req.Method).Inc()
		}
		r.log.Error("backend call failed",
			zap.String("method", req.Method),
			zap.Error(err))
		return
	}
	if !handled {
		r.log.Debug("no handler for method", zap.String("method", req.Method))
		return
	}
	if reply != nil {
		scope.Surface.Post(reply)
	}
}

// handleReady records the view's liveness signal. No state change.
func (r *Router) handleReady(_ context.Context, scope *Scope, _ *types.Request) error {
	scope.Session.MarkReady()
	return nil
}

// handlePersistState merges one key into the session hub's persisted
// record. Storage failure propagates; the dispatcher logs and drops the
// request without a reply.
func (r *Router) handlePersistState(_ context.Context, scope *Scope, req *types.Request) error {
	key := req.String("key")
	if key == "" {
		return fmt.Errorf("PersistState: missing key")
	}
	return r.store.Write(scope.Session.Hub(), key, req.Params["data"])
}

// handleOpenInNewWindow opens a drill-down child view for the entity
// named in the url field.
func (r *Router) handleOpenInNewWindow(ctx context.Context, scope *Scope, req *types.Request) error {
	identity := req.String("url")
	if identity == "" {
		return fmt.Errorf("OpenInNewWindow: missing url")
	}
	return scope.Session.OpenChild(ctx, identity)
}

// handleSaveAs prompts for a destination and writes the payload
// verbatim. Fire-and-forget: no reply, and a failed write is reported
// to the user instead of crashing the session.
func (r *Router) handleSaveAs(ctx context.Context, scope *Scope, req *types.Request) error {
	data := req.String("data")

	path, ok, err := r.dialog.PromptSave(ctx, "export.json", map[string][]string{"JSON": {"json"}})
	if err != nil {
		r.notifier.Error(fmt.Sprintf("save dialog failed: %v", err))
		return nil
	}
	if !ok {
		return nil
	}

	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		r.notifier.Error(fmt.Sprintf("failed to save %s: %v", path, err))
	}
	return nil
}
