package easel

import (
	"fmt"
	"os"
	"path/filepath"
)

// Document bundles a State, its History, the backing file path, and the
// view pan offset. One Document corresponds to one editor buffer.
type Document struct {
	State   *State
	History *History
	Path    string

	// Pan offset of the external view. Persisted nowhere; it is view
	// state, not document state.
	PanX, PanY float64
}

// NewDocument creates an empty document with a fresh state and a history
// seeded from it.
func NewDocument() *Document {
	s := NewState()
	return &Document{
		State:   s,
		History: NewHistory(s.Capture, s.Restore),
	}
}

// OpenDocument loads a document from a saved history payload.
func OpenDocument(path string) (*Document, error) {
	d := NewDocument()
	if err := d.Load(path); err != nil {
		return nil, err
	}
	return d, nil
}

// Load replaces the document's history and state from the file at path.
// On any error the document is left untouched.
func (d *Document) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("easel: load %s: %w", path, err)
	}
	if err := d.History.Decode(data); err != nil {
		return fmt.Errorf("easel: load %s: %w", path, err)
	}
	d.Path = path
	return nil
}

// Save writes the full history payload to the document's path.
func (d *Document) Save() error {
	if d.Path == "" {
		return fmt.Errorf("easel: document has no path")
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the full history payload to path and adopts it as the
// document's path.
func (d *Document) SaveAs(path string) error {
	data, err := d.History.Encode()
	if err != nil {
		return fmt.Errorf("easel: save %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("easel: save %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("easel: save %s: %w", path, err)
	}
	d.Path = path
	return nil
}

// Name returns the document's file name without directory, or "untitled"
// for an unsaved document.
func (d *Document) Name() string {
	if d.Path == "" {
		return "untitled"
	}
	return filepath.Base(d.Path)
}
