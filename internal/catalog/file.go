package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"jobmate/listings-service/internal/listing"
)

// File reads the baseline catalog from disk. The format follows the
// extension: .yaml/.yml is YAML, anything else JSON.
type File struct {
	Path string
}

// NewFile returns a File source for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Fetch reads and decodes the file. Every failure is a *TransportError.
func (f *File) Fetch(ctx context.Context) ([]listing.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Source: f.Path, Err: err}
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &TransportError{Source: f.Path, Err: err}
	}

	var jobs []listing.Job
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &jobs)
	default:
		err = json.Unmarshal(data, &jobs)
	}
	if err != nil {
		return nil, &TransportError{Source: f.Path, Err: fmt.Errorf("decode: %w", err)}
	}
	return jobs, nil
}
