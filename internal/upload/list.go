// Package upload implements the file-selection widget state: an ordered,
// capacity-bounded list of file handles.
package upload

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/registry"
)

// DefaultMaxFiles is the capacity used when a config leaves MaxFiles unset.
const DefaultMaxFiles = 20

// multipleFileTools accept more than one file per run.
var multipleFileTools = map[string]bool{
	"merge-pdf":  true,
	"jpg-to-pdf": true,
}

// Config describes what a tool's upload widget accepts.
type Config struct {
	AcceptedFiles string // Advisory extension list, never enforced
	Multiple      bool
	MaxFiles      int
}

// ConfigForTool returns the widget config for a tool.
func ConfigForTool(tool models.Tool, maxFiles int) Config {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return Config{
		AcceptedFiles: tool.AcceptedFiles,
		Multiple:      multipleFileTools[tool.ID],
		MaxFiles:      maxFiles,
	}
}

// Selection is a file chosen or dropped by the user, before it gets a slot.
type Selection struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// List holds the selected files of one wizard. It is safe for concurrent use.
type List struct {
	mu    sync.RWMutex
	cfg   Config
	files []models.FileHandle
}

// NewList creates an empty list.
func NewList(cfg Config) *List {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if !cfg.Multiple {
		cfg.MaxFiles = 1
	}
	return &List{cfg: cfg, files: make([]models.FileHandle, 0)}
}

// Config returns the list configuration.
func (l *List) Config() Config {
	return l.cfg
}

// Add appends a batch of selections and returns how many were kept.
//
// In multiple mode the batch is truncated to the remaining capacity. In
// single mode the list is replaced by the first file of the batch. Files
// beyond capacity are dropped without error.
func (l *List) Add(batch []Selection) int {
	if len(batch) == 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.cfg.Multiple {
		l.files = []models.FileHandle{newHandle(batch[0])}
		return 1
	}

	remaining := l.cfg.MaxFiles - len(l.files)
	if remaining <= 0 {
		return 0
	}
	if len(batch) > remaining {
		batch = batch[:remaining]
	}
	for _, s := range batch {
		l.files = append(l.files, newHandle(s))
	}
	return len(batch)
}

// Remove deletes the file at index. It reports false when the index is
// out of range.
func (l *List) Remove(index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.files) {
		return false
	}
	l.files = append(l.files[:index:index], l.files[index+1:]...)
	return true
}

// Clear removes every file.
func (l *List) Clear() {
	l.mu.Lock()
	l.files = make([]models.FileHandle, 0)
	l.mu.Unlock()
}

// Files returns a copy of the current list.
func (l *List) Files() []models.FileHandle {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append(make([]models.FileHandle, 0, len(l.files)), l.files...)
}

// Len returns the number of files.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.files)
}

// First returns the first file, if any.
func (l *List) First() (models.FileHandle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.files) == 0 {
		return models.FileHandle{}, false
	}
	return l.files[0], true
}

// Extensions returns the advisory extension list for display.
func (c Config) Extensions() []string {
	return registry.Extensions(c.AcceptedFiles)
}

func newHandle(s Selection) models.FileHandle {
	return models.FileHandle{
		ID:   uuid.New().String(),
		Name: s.Name,
		Size: s.Size,
	}
}
