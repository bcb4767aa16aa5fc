// Package classify computes the legal category flags of a license identifier.
//
// The deprecated, OSI and FSF bits come from the registry. The copyleft and
// GNU bits are policy: they are decided by the identifier alone, using the
// tables below. Copyleft follows https://www.gnu.org/licenses/license-list.en.html
// and makes no distinction between weak and strong copyleft.
package classify

import (
	"fmt"
	"strings"

	"github.com/StinkyLord/spdx-update/internal/model"
)

// rule matches an identifier either by prefix or exactly.
type rule struct {
	pattern string
	exact   bool
}

func (r rule) match(id string) bool {
	if r.exact {
		return id == r.pattern
	}
	return strings.HasPrefix(id, r.pattern)
}

// copyleftRules is fixed policy data; it is not derivable from any registry field.
var copyleftRules = [...]rule{
	{pattern: "AGPL-"},
	{pattern: "CC-BY-NC-SA-"},
	{pattern: "CC-BY-SA-"},
	{pattern: "CECILL-"},
	{pattern: "CPL-"},
	{pattern: "CDDL-"},
	{pattern: "EUPL"},
	{pattern: "GFDL-"},
	{pattern: "GPL-"},
	{pattern: "LGPL-"},
	{pattern: "MPL-"},
	{pattern: "NPL-"},
	{pattern: "OSL-"},
	{pattern: "BSD-Protection", exact: true},
	{pattern: "MS-PL", exact: true},
	{pattern: "MS-RL", exact: true},
	// OpenSSL is debated and deliberately left out.
	{pattern: "Parity-6.0.0", exact: true},
	{pattern: "SISSL", exact: true},
	{pattern: "xinetd", exact: true},
	{pattern: "YPL-1.1", exact: true},
}

var gnuRules = [...]rule{
	{pattern: "AGPL-"},
	{pattern: "GFDL-"},
	{pattern: "GPL-"},
	{pattern: "LGPL-"},
}

func init() {
	if err := checkRules(copyleftRules[:]); err != nil {
		panic("classify: copyleft rules: " + err.Error())
	}
	if err := checkRules(gnuRules[:]); err != nil {
		panic("classify: gnu rules: " + err.Error())
	}
}

// checkRules rejects empty and repeated patterns.
func checkRules(rules []rule) error {
	seen := make(map[rule]bool, len(rules))
	for _, r := range rules {
		if r.pattern == "" {
			return fmt.Errorf("empty pattern")
		}
		if seen[r] {
			return fmt.Errorf("duplicate pattern %q", r.pattern)
		}
		seen[r] = true
	}
	return nil
}

func matchAny(rules []rule, id string) bool {
	for _, r := range rules {
		if r.match(id) {
			return true
		}
	}
	return false
}

// IsCopyleft reports whether id is classified as copyleft.
func IsCopyleft(id string) bool {
	return matchAny(copyleftRules[:], id)
}

// IsGNU reports whether id belongs to the GNU license family.
func IsGNU(id string) bool {
	return matchAny(gnuRules[:], id)
}

// Classify combines the registry booleans with the identifier policy. Each
// category is decided independently; the result may be zero.
func Classify(id string, deprecated, osiApproved, fsfLibre model.OptBool) model.Flags {
	var flags model.Flags
	if deprecated.IsTrue() {
		flags |= model.Deprecated
	}
	if osiApproved.IsTrue() {
		flags |= model.OSIApproved
	}
	if fsfLibre.IsTrue() {
		flags |= model.FSFLibre
	}
	if IsCopyleft(id) {
		flags |= model.Copyleft
	}
	if IsGNU(id) {
		flags |= model.GNU
	}
	return flags
}
