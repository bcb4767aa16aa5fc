// Package output serialises a built artifact for embedding in a host
// application.
package output

import (
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/StinkyLord/spdx-update/internal/model"
)

// Supported formats.
const (
	FormatGo   = "go"
	FormatJSON = "json"
)

// Options control rendering.
type Options struct {
	Format    string // FormatGo or FormatJSON; empty means FormatGo
	Package   string // package clause for FormatGo
	SourceURL string // where the documents came from, recorded in the header
	Tool      string // generator name recorded in the header
}

// Write renders a and writes it to outputPath. If outputPath is "-", it
// writes to stdout.
func Write(a *model.Artifact, outputPath string, opts Options) error {
	data, err := Render(a, opts)
	if err != nil {
		return err
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return writeFile(outputPath, data)
}

// Render returns the serialised artifact.
func Render(a *model.Artifact, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatGo, "":
		return renderGo(a, opts)
	case FormatJSON:
		return renderJSON(a)
	default:
		return nil, fmt.Errorf("unsupported format %q (supported: %s, %s)", opts.Format, FormatGo, FormatJSON)
	}
}

func writeFile(path string, data []byte) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
