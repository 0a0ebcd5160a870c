package bootstrap

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/hubwatch/panelhost/internal/host"
	"github.com/hubwatch/panelhost/internal/shared/types"
)

// Script-level binding names read by the rendered bundle at load time.
// The bundle is shared with the editor-embedded host, so the wire names
// are fixed.
const (
	bindingIdentity = "OrchestrationIdFromVsCode"
	bindingState    = "StateFromVsCode"
	bindingSettings = "SettingsFromVsCode"
	bindingDiagram  = "DiagramFromVsCode"
)

// Sorted map keys keep rebuilds of identical inputs byte-identical.
var deterministic = sonic.Config{SortMapKeys: true}.Froze()

// Builder produces the initial content installed into a view surface.
type Builder struct {
	resolver host.AssetResolver

	// diagramAvailable reports whether the supplementary visualization
	// exists for an identity. Membership criteria are the injector's
	// concern.
	diagramAvailable func(identity string) bool
}

// NewBuilder creates a payload builder. A nil availability predicate
// means the visualization is never available.
func NewBuilder(resolver host.AssetResolver, diagramAvailable func(identity string) bool) *Builder {
	if diagramAvailable == nil {
		diagramAvailable = func(string) bool { return false }
	}
	return &Builder{resolver: resolver, diagramAvailable: diagramAvailable}
}

// Build renders the bootstrap payload for one view. Identity is "" for
// the root view; a nil state embeds as an empty object. Rebuilding with
// identical inputs reproduces the same bytes.
func (b *Builder) Build(state types.StateRecord, cfg types.RuntimeConfig, identity string, assets Assets) (string, error) {
	if state == nil {
		state = types.StateRecord{}
	}

	identityJSON, err := deterministic.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("encode identity: %w", err)
	}
	stateJSON, err := deterministic.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	settingsJSON, err := deterministic.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}

	diagram := 0
	if b.diagramAvailable(identity) {
		diagram = 1
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\"/>\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width,initial-scale=1\"/>\n")

	for _, path := range assets.CSS {
		fmt.Fprintf(&sb, "<link rel=\"stylesheet\" href=\"%s\"/>\n", b.resolver.ResolveAsset(path))
	}

	fmt.Fprintf(&sb, "<script>var %s=%s,%s=%s;</script>\n",
		bindingIdentity, identityJSON, bindingState, stateJSON)
	fmt.Fprintf(&sb, "<script>var %s=%s;</script>\n", bindingSettings, settingsJSON)
	fmt.Fprintf(&sb, "<script>var %s=%d;</script>\n", bindingDiagram, diagram)

	for _, path := range assets.JS {
		fmt.Fprintf(&sb, "<script defer=\"defer\" src=\"%s\"></script>\n", b.resolver.ResolveAsset(path))
	}

	sb.WriteString("</head>\n<body>\n")
	sb.WriteString("<noscript>You need to enable JavaScript to run this app.</noscript>\n")
	sb.WriteString("<div id=\"root\"></div>\n")
	sb.WriteString("</body>\n</html>\n")

	return sb.String(), nil
}
