package model

import (
	"sort"
	"strings"
)

// LicenseRecord is one row of the license table.
type LicenseRecord struct {
	ID          string // Registry identifier, possibly synthetic (e.g. "GFDL-1.3-invariants")
	DisplayName string // Human readable name, falls back to ID
	Flags       Flags
}

// ExceptionRecord is one row of the exception table.
type ExceptionRecord struct {
	ID    string
	Flags Flags // Only ever 0 or Deprecated
}

// AliasEntry maps an informally used identifier to its canonical form.
// Canonical may be a license expression such as "MIT OR Apache-2.0".
type AliasEntry struct {
	Invalid   string `yaml:"invalid" json:"invalid"`
	Canonical string `yaml:"canonical" json:"canonical"`
}

// LicenseTable is the sorted license table plus the registry version it was
// built from.
type LicenseTable struct {
	Version string
	Records []LicenseRecord
}

// Lookup finds a record by exact id. Records must be sorted by id.
func (t LicenseTable) Lookup(id string) (LicenseRecord, bool) {
	i := sort.Search(len(t.Records), func(i int) bool {
		return t.Records[i].ID >= id
	})
	if i < len(t.Records) && t.Records[i].ID == id {
		return t.Records[i], true
	}
	return LicenseRecord{}, false
}

// ExceptionTable is the sorted exception table.
type ExceptionTable struct {
	Records []ExceptionRecord
}

// Lookup finds a record by exact id. Records must be sorted by id.
func (t ExceptionTable) Lookup(id string) (ExceptionRecord, bool) {
	i := sort.Search(len(t.Records), func(i int) bool {
		return t.Records[i].ID >= id
	})
	if i < len(t.Records) && t.Records[i].ID == id {
		return t.Records[i], true
	}
	return ExceptionRecord{}, false
}

// AliasTable is the curated imprecise-name table. Entries keep their curated
// order; they are emitted verbatim.
type AliasTable struct {
	Version int          `yaml:"version" json:"version"`
	Entries []AliasEntry `yaml:"aliases" json:"aliases"`
}

// Resolve returns the canonical value for an invalid identifier.
func (t AliasTable) Resolve(invalid string) (string, bool) {
	for _, e := range t.Entries {
		if e.Invalid == invalid {
			return e.Canonical, true
		}
	}
	return "", false
}

// Identifiers splits a canonical value into the identifiers it mentions,
// skipping expression operators and parentheses.
//
//	"(MIT OR Apache-2.0) WITH LLVM-exception" -> [MIT Apache-2.0 LLVM-exception]
func (e AliasEntry) Identifiers() []string {
	fields := strings.Fields(strings.NewReplacer("(", " ", ")", " ").Replace(e.Canonical))
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "AND", "OR", "WITH":
			continue
		}
		ids = append(ids, f)
	}
	return ids
}

// Artifact bundles everything the emitter writes, in emission order.
type Artifact struct {
	Ref        string // Upstream ref the documents were fetched at (tag or branch)
	Licenses   LicenseTable
	Aliases    AliasTable
	Exceptions ExceptionTable
}
