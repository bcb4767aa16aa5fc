// Package builder turns validated registry documents into the sorted license
// and exception tables.
package builder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/StinkyLord/spdx-update/internal/classify"
	"github.com/StinkyLord/spdx-update/internal/document"
	"github.com/StinkyLord/spdx-update/internal/model"
)

// NoAssertion is the sentinel identifier for "no license asserted". The
// registry does not list it, but consumers rely on it being present.
// See https://github.com/spdx/spdx-spec/issues/50.
const NoAssertion = "NOASSERTION"

// ErrDuplicateID matches every *DuplicateIDError.
var ErrDuplicateID = errors.New("duplicate identifier")

// DuplicateIDError reports two records sharing an id in one table.
type DuplicateIDError struct {
	Table string
	ID    string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s table: %s %q", e.Table, ErrDuplicateID, e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// Builder builds tables from decoded documents. It holds no state between
// calls.
type Builder struct {
	Logger *zap.Logger
}

// New creates a Builder. A nil logger discards output.
func New(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Logger: logger}
}

// Licenses builds the license table from licenses.json. Any malformed
// element fails the whole build.
func (b *Builder) Licenses(doc document.Object) (model.LicenseTable, error) {
	elems, err := doc.Objects("licenses")
	if err != nil {
		return model.LicenseTable{}, err
	}
	b.Logger.Info("license list loaded", zap.Int("licenses", len(elems)))

	// one record per element, plus the occasional -invariants twin and the sentinel
	records := make([]model.LicenseRecord, 0, len(elems)+8)
	for _, lic := range elems {
		recs, err := b.licenseRecords(lic)
		if err != nil {
			return model.LicenseTable{}, err
		}
		records = append(records, recs...)
	}

	records = append(records, model.LicenseRecord{ID: NoAssertion, DisplayName: NoAssertion})

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	for i := 1; i < len(records); i++ {
		if records[i].ID == records[i-1].ID {
			return model.LicenseTable{}, &DuplicateIDError{Table: "license", ID: records[i].ID}
		}
	}

	version, err := doc.String("licenseListVersion")
	if err != nil {
		return model.LicenseTable{}, err
	}

	return model.LicenseTable{Version: version, Records: records}, nil
}

// licenseRecords classifies one registry element. A bare GFDL version yields
// its synthetic "-invariants" twin first, then the element itself.
func (b *Builder) licenseRecords(lic document.Object) ([]model.LicenseRecord, error) {
	id, err := lic.String("licenseId")
	if err != nil {
		return nil, err
	}
	name, ok := lic.OptString("name")
	if !ok {
		name = id
	}
	b.Logger.Debug("license", zap.String("id", id), zap.String("name", name))

	flags := classify.Classify(id,
		lic.OptBool("isDeprecatedLicenseId"),
		lic.OptBool("isOsiApproved"),
		lic.OptBool("isFsfLibre"),
	)

	rec := model.LicenseRecord{ID: id, DisplayName: name, Flags: flags}
	if !needsInvariantsVariant(id) {
		return []model.LicenseRecord{rec}, nil
	}
	twin := rec
	twin.ID = id + "-invariants"
	return []model.LicenseRecord{twin, rec}, nil
}

// needsInvariantsVariant reports whether id is a bare GFDL version such as
// "GFDL-1.3". The registry only lists "-invariants" for the qualified
// variants, so the bare versions get a synthetic twin.
//
// The length check is a heuristic: it separates "GFDL-1.3" from
// "GFDL-1.3-only" only because every bare id is eight bytes long today.
func needsInvariantsVariant(id string) bool {
	return strings.HasPrefix(id, "GFDL-") && len(id) < 9
}

// Exceptions builds the exception table from exceptions.json. Exceptions
// only ever carry the deprecated flag.
func (b *Builder) Exceptions(doc document.Object) (model.ExceptionTable, error) {
	elems, err := doc.Objects("exceptions")
	if err != nil {
		return model.ExceptionTable{}, err
	}
	b.Logger.Info("exception list loaded", zap.Int("exceptions", len(elems)))

	records := make([]model.ExceptionRecord, 0, len(elems))
	for _, exc := range elems {
		id, err := exc.String("licenseExceptionId")
		if err != nil {
			return model.ExceptionTable{}, err
		}
		b.Logger.Debug("exception", zap.String("id", id))

		var flags model.Flags
		if exc.OptBool("isDeprecatedLicenseId").IsTrue() {
			flags = model.Deprecated
		}
		records = append(records, model.ExceptionRecord{ID: id, Flags: flags})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
	for i := 1; i < len(records); i++ {
		if records[i].ID == records[i-1].ID {
			return model.ExceptionTable{}, &DuplicateIDError{Table: "exception", ID: records[i].ID}
		}
	}

	return model.ExceptionTable{Records: records}, nil
}
