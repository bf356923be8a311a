// Package importer loads round history from exported files.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/handicap/internal/domain/model"
)

const (
	defaultPlayer = "me"
	defaultHoles  = 18
)

// Parser turns file contents into rounds.
type Parser interface {
	Parse(data []byte) ([]model.Round, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct {
	cfg config
}

// NewFactory creates a new parser factory.
func NewFactory(opts ...Option) *Factory {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Factory{cfg: cfg}
}

// GetParser returns a parser for the given file name.
func (f *Factory) GetParser(fileName string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return &JSONParser{cfg: f.cfg}, nil
	case ".csv":
		return &CSVParser{cfg: f.cfg}, nil
	case ".xlsx":
		return &XLSXParser{cfg: f.cfg}, nil
	default:
		return nil, fmt.Errorf("%w: %s (must be .json, .csv or .xlsx)", ErrUnsupportedFormat, fileName)
	}
}

// LoadFile reads path and parses it with the parser matching its extension.
func (f *Factory) LoadFile(ctx context.Context, path string) ([]model.Round, error) {
	p, err := f.GetParser(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rounds, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rounds, nil
}
