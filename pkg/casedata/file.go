package casedata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ritzau/looprank/pkg/logging"
)

// FileSource reads connection matrices from the connections directory of a
// case. Gain matrices live next to it in GainDir and are found per box.
type FileSource struct {
	CaseDir string

	// Connections maps scenario names to connection file names
	Connections map[string]string
}

// NewFileSource creates a source for the case rooted at caseDir
func NewFileSource(caseDir string, connections map[string]string) *FileSource {
	return &FileSource{CaseDir: caseDir, Connections: connections}
}

func (s *FileSource) Name() string {
	return "file"
}

// GainDir is where the per box gain matrices of the case are stored
func (s *FileSource) GainDir() string {
	return filepath.Join(s.CaseDir, "gainmatrix")
}

func (s *FileSource) Scenario(ctx context.Context, name string) (*Scenario, error) {
	file, ok := s.Connections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no connection file", ErrUnknownScenario, name)
	}

	path := filepath.Join(s.CaseDir, "connections", file)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	variables, conn, err := ReadConnectionMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logging.DebugContext(ctx, "loaded connection matrix", "scenario", name, "tags", len(variables))
	return &Scenario{
		Name:        name,
		Variables:   variables,
		Connections: conn,
	}, nil
}
