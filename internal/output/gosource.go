package output

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"text/template"

	"github.com/StinkyLord/spdx-update/internal/model"
)

// goFlagNames maps each category to the constant emitted for it.
var goFlagNames = map[string]string{
	"FSF_LIBRE":    "IsFSFLibre",
	"OSI_APPROVED": "IsOSIApproved",
	"DEPRECATED":   "IsDeprecated",
	"COPYLEFT":     "IsCopyleft",
	"GNU":          "IsGNU",
}

var goTemplate = template.Must(template.New("identifiers").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"flags": goFlags,
}).Parse(`// Code generated by {{.Tool}} from {{.SourceURL}}; DO NOT EDIT.

package {{.Package}}

// Version is the license list version the tables were generated from.
const Version = {{quote .Artifact.Licenses.Version}}

const (
	IsFSFLibre    uint8 = 0x1
	IsOSIApproved uint8 = 0x2
	IsDeprecated  uint8 = 0x4
	IsCopyleft    uint8 = 0x8
	IsGNU         uint8 = 0x10
)

// Licenses is sorted by ID.
var Licenses = []struct {
	ID    string
	Name  string
	Flags uint8
}{
{{- range .Artifact.Licenses.Records}}
	{ {{- quote .ID}}, {{quote .DisplayName}}, {{flags .Flags}}},
{{- end}}
}

// ImpreciseNames maps names seen in the wild to valid license expressions.
var ImpreciseNames = []struct {
	Invalid   string
	Canonical string
}{
{{- range .Artifact.Aliases.Entries}}
	{ {{- quote .Invalid}}, {{quote .Canonical}}},
{{- end}}
}

// Exceptions is sorted by ID.
var Exceptions = []struct {
	ID    string
	Flags uint8
}{
{{- range .Artifact.Exceptions.Records}}
	{ {{- quote .ID}}, {{flags .Flags}}},
{{- end}}
}
`))

// goFlags renders flags symbolically, e.g. "IsOSIApproved | IsCopyleft", or "0".
func goFlags(f model.Flags) string {
	names := f.Names()
	if len(names) == 0 {
		return "0"
	}
	for i, n := range names {
		names[i] = goFlagNames[n]
	}
	return strings.Join(names, " | ")
}

func renderGo(a *model.Artifact, opts Options) ([]byte, error) {
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("invalid package name %q", opts.Package)
	}

	var buf bytes.Buffer
	err := goTemplate.Execute(&buf, struct {
		Options
		Artifact *model.Artifact
	}{opts, a})
	if err != nil {
		return nil, fmt.Errorf("failed to render Go source: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format Go source: %w", err)
	}
	return src, nil
}
