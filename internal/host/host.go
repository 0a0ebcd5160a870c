package host

import "context"

// Surface is one rendered view surface. The hosting runtime owns the
// actual surface object; the session holds this non-owning handle and
// must call Dispose exactly once per surface during cleanup.
type Surface interface {
	// ID returns the unique handle id assigned by the runtime.
	ID() string

	Title() string
	SetTitle(title string)

	// SetHTML installs the view's content buffer.
	SetHTML(html string)
	HTML() string

	// Reveal brings an existing surface to the foreground.
	Reveal()

	// Post pushes a reply to the view. Fire-and-forget: posts to a
	// disposed or detached surface are silently discarded.
	Post(reply interface{})

	// OnMessage registers the inbound handler. Messages from one
	// surface are delivered in arrival order.
	OnMessage(fn func(raw []byte))

	// OnViewState registers a visibility/focus change listener.
	OnViewState(fn func(visible bool))

	// OnDispose registers a disposal listener. Fires once, whether
	// disposal came from the runtime or from Dispose; registering on
	// an already disposed surface fires immediately.
	OnDispose(fn func())

	// Dispose releases the surface. Idempotent.
	Dispose()
	Disposed() bool
}

// SurfaceFactory creates view surfaces on the hosting runtime.
type SurfaceFactory interface {
	Create(title string) (Surface, error)
}

// AssetResolver maps a local asset path to an externally addressable
// URI. Must produce stable URIs for identical inputs.
type AssetResolver interface {
	ResolveAsset(path string) string
}

// SaveDialog is the user-driven save capability. It returns the chosen
// destination path, or ok=false on cancel.
type SaveDialog interface {
	PromptSave(ctx context.Context, defaultName string, filters map[string][]string) (path string, ok bool, err error)
}

// Notifier reports non-fatal failures on the host's notification surface.
type Notifier interface {
	Warn(msg string)
	Error(msg string)
}

// StateStorage is the process-wide persisted store. Records are keyed
// by name; unrelated keys belong to other features and must survive
// writes untouched.
type StateStorage interface {
	Get(key string) (map[string]interface{}, bool, error)
	Set(key string, record map[string]interface{}) error
}
