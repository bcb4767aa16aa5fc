// Package model defines the tables produced by the identifier compiler.
package model

// Flags is the classification bitset attached to every record.
type Flags uint8

const (
	FSFLibre    Flags = 0x1
	OSIApproved Flags = 0x2
	Deprecated  Flags = 0x4
	Copyleft    Flags = 0x8
	GNU         Flags = 0x10
)

// flagOrder is the order categories are listed in when flags are rendered.
var flagOrder = [...]struct {
	flag Flags
	name string
}{
	{Deprecated, "DEPRECATED"},
	{OSIApproved, "OSI_APPROVED"},
	{FSFLibre, "FSF_LIBRE"},
	{Copyleft, "COPYLEFT"},
	{GNU, "GNU"},
}

// Has reports whether every bit of f is set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// Names returns the names of the set categories, e.g. ["OSI_APPROVED", "COPYLEFT"].
// A zero value yields an empty slice.
func (fl Flags) Names() []string {
	names := make([]string, 0, len(flagOrder))
	for _, o := range flagOrder {
		if fl.Has(o.flag) {
			names = append(names, o.name)
		}
	}
	return names
}

// OptBool is an optional upstream boolean: a field may be absent, false or true.
type OptBool uint8

const (
	Absent OptBool = iota
	False
	True
)

// IsTrue reports whether the value was present and true.
func (b OptBool) IsTrue() bool { return b == True }

func (b OptBool) String() string {
	switch b {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "absent"
	}
}
