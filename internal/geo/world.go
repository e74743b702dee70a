package geo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
)

// NamedLayer pairs an obstacle layer with its name.
type NamedLayer struct {
	Name  string
	Layer Layer
}

// Snapshot is an immutable set of named layers. Safe for concurrent reads.
type Snapshot struct {
	names       []string
	layers      Layers
	fingerprint string
}

// NewSnapshot builds a snapshot ordered by layer name.
func NewSnapshot(named []NamedLayer) *Snapshot {
	sorted := slices.Clone(named)
	slices.SortStableFunc(sorted, func(a, b NamedLayer) int {
		return strings.Compare(a.Name, b.Name)
	})

	s := &Snapshot{
		names:  make([]string, 0, len(sorted)),
		layers: make(Layers, 0, len(sorted)),
	}
	h := newFingerprintHash()
	for _, nl := range sorted {
		s.names = append(s.names, nl.Name)
		s.layers = append(s.layers, nl.Layer)
		h.Write([]byte(nl.Name))
		h.Write([]byte{0})
		if fp, ok := nl.Layer.(Fingerprinter); ok {
			h.Write([]byte(fp.Fingerprint()))
		} else {
			// Content unknown: make the snapshot unique.
			fmt.Fprintf(h, "%p", nl.Layer)
		}
		h.Write([]byte{0})
	}
	s.fingerprint = sumHex(h)
	return s
}

// IsWalkable implements Oracle.
func (s *Snapshot) IsWalkable(c Cell) bool { return s.layers.IsWalkable(c) }

// Validate returns ErrNoLayers if the snapshot has no layers and
// ErrUnbounded if none of them is a Bounds layer.
func (s *Snapshot) Validate() error {
	if err := s.layers.Validate(); err != nil {
		return err
	}
	for _, l := range s.layers {
		if _, ok := l.(Bounds); ok {
			return nil
		}
	}
	return ErrUnbounded
}

// Fingerprint identifies the snapshot content.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// Names returns the layer names in order.
func (s *Snapshot) Names() []string { return slices.Clone(s.names) }

// Layers returns the layers in name order.
func (s *Snapshot) Layers() Layers { return slices.Clone(s.layers) }

// Bounds returns the union of all Bitmap and Bounds layers, if any.
func (s *Snapshot) Bounds() (Bounds, bool) {
	var out Bounds
	found := false
	for _, l := range s.layers {
		var b Bounds
		switch v := l.(type) {
		case *Bitmap:
			b = v.Bounds()
		case Bounds:
			b = v
		default:
			continue
		}
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}

var emptySnapshot = NewSnapshot(nil)

// World holds the current obstacle snapshot.
// Thread-safe: snapshots are immutable and swapped atomically.
type World struct {
	current atomic.Pointer[Snapshot]
}

// NewWorld creates a World with no layers.
func NewWorld() *World {
	w := &World{}
	w.current.Store(emptySnapshot)
	return w
}

// Replace installs a new snapshot built from named.
func (w *World) Replace(named []NamedLayer) *Snapshot {
	s := NewSnapshot(named)
	w.current.Store(s)
	return s
}

// Snapshot returns the current snapshot. Searches should hold on to one
// snapshot for their whole run.
func (w *World) Snapshot() *Snapshot {
	return w.current.Load()
}

// IsLoaded returns true if any layers are installed.
func (w *World) IsLoaded() bool {
	return len(w.current.Load().layers) > 0
}

// IsWalkable implements Oracle against the current snapshot.
func (w *World) IsWalkable(c Cell) bool {
	return w.current.Load().IsWalkable(c)
}

// Validate implements the oracle validation hook.
func (w *World) Validate() error {
	return w.current.Load().Validate()
}

// Fingerprint returns the current snapshot fingerprint.
func (w *World) Fingerprint() string {
	return w.current.Load().Fingerprint()
}

// WithBounds appends a Bounds layer spanning the union of the bitmaps in
// named, so searches on the loaded map stay finite.
func WithBounds(named []NamedLayer) []NamedLayer {
	var (
		union Bounds
		found bool
	)
	for _, nl := range named {
		bm, ok := nl.Layer.(*Bitmap)
		if !ok {
			continue
		}
		if !found {
			union, found = bm.Bounds(), true
			continue
		}
		union = union.Union(bm.Bounds())
	}
	if !found {
		return named
	}
	return append(slices.Clone(named), NamedLayer{Name: BoundsLayerName, Layer: union})
}

// LoadDir loads all .grid files from dir, names each layer after its file,
// adds a bounds layer and installs the result.
func (w *World) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading layers dir %s: %w", dir, err)
	}

	var named []NamedLayer
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != GridFileExt {
			continue
		}
		base := name[:len(name)-len(ext)]
		if base == BoundsLayerName {
			slog.Warn("skip layer file (reserved name)", "file", name)
			continue
		}

		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("opening layer %s: %w", name, err)
		}
		bm, err := ParseBitmap(f, Cell{})
		f.Close()
		if err != nil {
			return fmt.Errorf("parsing layer %s: %w", name, err)
		}
		named = append(named, NamedLayer{Name: base, Layer: bm})
	}

	if len(named) == 0 {
		return fmt.Errorf("no %s files in %s", GridFileExt, dir)
	}

	s := w.Replace(WithBounds(named))
	slog.Info("layers loaded", "layers", len(named), "dir", dir, "fingerprint", s.Fingerprint())
	return nil
}
