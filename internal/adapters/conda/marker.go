package conda

import (
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EnvironmentMarker = (*Marker)(nil)

// Marker stores the environment file in conda-meta/pixi.
type Marker struct{}

// NewMarker creates a new Marker.
func NewMarker() *Marker {
	return &Marker{}
}

// Read returns the environment file of the prefix. A missing or unreadable file yields nil so
// the prefix is installed again.
func (m *Marker) Read(prefix string) (*domain.EnvironmentFile, error) {
	path := domain.EnvironmentFilePath(prefix)
	data, err := os.ReadFile(path) //nolint:gosec // Path is inside the prefix
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read environment file"), "path", path)
	}

	var file domain.EnvironmentFile
	if json.Unmarshal(data, &file) != nil {
		return nil, nil
	}
	return &file, nil
}

// Write replaces the environment file of the prefix.
func (m *Marker) Write(prefix string, file domain.EnvironmentFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode environment file")
	}
	return writeFileAtomic(domain.EnvironmentFilePath(prefix), data)
}
