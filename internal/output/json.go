package output

import (
	"encoding/json"
	"fmt"

	"github.com/StinkyLord/spdx-update/internal/model"
)

// JSON document layout. Field order is the artifact's positional order.
type jsonArtifact struct {
	Version    string             `json:"version"`
	Flags      jsonFlags          `json:"flags"`
	Licenses   []jsonLicense      `json:"licenses"`
	Imprecise  []model.AliasEntry `json:"imprecise"`
	Exceptions []jsonException    `json:"exceptions"`
}

type jsonFlags struct {
	FSFLibre    uint8 `json:"IS_FSF_LIBRE"`
	OSIApproved uint8 `json:"IS_OSI_APPROVED"`
	Deprecated  uint8 `json:"IS_DEPRECATED"`
	Copyleft    uint8 `json:"IS_COPYLEFT"`
	GNU         uint8 `json:"IS_GNU"`
}

type jsonLicense struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Flags uint8  `json:"flags"`
}

type jsonException struct {
	ID    string `json:"id"`
	Flags uint8  `json:"flags"`
}

func renderJSON(a *model.Artifact) ([]byte, error) {
	doc := jsonArtifact{
		Version: a.Licenses.Version,
		Flags: jsonFlags{
			FSFLibre:    uint8(model.FSFLibre),
			OSIApproved: uint8(model.OSIApproved),
			Deprecated:  uint8(model.Deprecated),
			Copyleft:    uint8(model.Copyleft),
			GNU:         uint8(model.GNU),
		},
		Licenses:   make([]jsonLicense, 0, len(a.Licenses.Records)),
		Imprecise:  make([]model.AliasEntry, 0, len(a.Aliases.Entries)),
		Exceptions: make([]jsonException, 0, len(a.Exceptions.Records)),
	}
	for _, r := range a.Licenses.Records {
		doc.Licenses = append(doc.Licenses, jsonLicense{ID: r.ID, Name: r.DisplayName, Flags: uint8(r.Flags)})
	}
	doc.Imprecise = append(doc.Imprecise, a.Aliases.Entries...)
	for _, r := range a.Exceptions.Records {
		doc.Exceptions = append(doc.Exceptions, jsonException{ID: r.ID, Flags: uint8(r.Flags)})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}
