package gen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	mu             sync.Mutex
	FilesGenerated int
	TotalBytes     int64
}

func (m *WriterMetrics) add(n int) {
	m.mu.Lock()
	m.FilesGenerated++
	m.TotalBytes += int64(n)
	m.mu.Unlock()
}

// writeFile renders the file of a model, formats it with goimports and
// writes it to the output directory. Unformattable output is kept next to
// the target with an ".error" suffix for debugging.
func (g *JenniferGenerator) writeFile(model, filename string, f *jen.File) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return NewGenerationError(model, filename, StageRender, err)
	}
	path := filepath.Join(g.outDir, filename)
	formatted, err := imports.Process(path, buf.Bytes(), nil)
	if err != nil {
		debugPath := path + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return NewGenerationError(model, filename, StageFormat,
			fmt.Errorf("%w (unformatted source in %s)", err, debugPath))
	}
	if err := os.WriteFile(path, formatted, 0o644); err != nil {
		return NewGenerationError(model, filename, StageWrite, err)
	}
	g.metrics.add(len(formatted))
	return nil
}
