package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
)

// ExportDialog is the headless rendition of the save capability:
// confirmed saves land in a fixed export directory under a timestamped
// name. The interactive dialog itself belongs to the editor host.
type ExportDialog struct {
	Dir string
}

// PromptSave returns a destination path inside the export directory.
// A random infix keeps saves landing in the same second from
// overwriting each other.
func (d ExportDialog) PromptSave(_ context.Context, defaultName string, _ map[string][]string) (string, bool, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s",
		time.Now().Format("20060102-150405"), uuid.NewString()[:8], defaultName)
	return filepath.Join(d.Dir, name), true, nil
}

// zapNotifier reports user-facing failures through the structured log,
// the closest notification surface a headless host has.
type zapNotifier struct {
	log *logging.Logger
}

func (n zapNotifier) Warn(msg string) { n.log.Warn(msg) }
func (n zapNotifier) Error(msg string) { n.log.Error(msg) }
