package model

// ChangeType classifies a change.
type ChangeType string

const (
	Added    ChangeType = "added"
	Removed  ChangeType = "removed"
	Modified ChangeType = "modified"
)

// Severity is the SemVer impact of a change.
type Severity string

const (
	Major Severity = "major"
	Minor Severity = "minor"
	Patch Severity = "patch"
)

// Rank orders severities. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case Major:
		return 3
	case Minor:
		return 2
	case Patch:
		return 1
	}
	return 0
}

// Valid reports whether s is one of the three SemVer levels.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Max returns the higher of two severities.
func (s Severity) Max(o Severity) Severity {
	if o.Rank() > s.Rank() {
		return o
	}
	return s
}

// Fields reported in Change.Details.
const (
	FieldParameterCount    = "parameters"
	FieldParameterType     = "parameter.type"
	FieldParameterOptional = "parameter.optional"
	FieldParameterByRef    = "parameter.by_ref"
	FieldParameterVariadic = "parameter.variadic"
	FieldReturnType        = "return_type"
	FieldVisibility        = "visibility"
	FieldStatic            = "static"
	FieldAbstract          = "abstract"
	FieldFinal             = "final"
	FieldExtends           = "extends"
	FieldImplements        = "implements"
	FieldValue             = "value"
	FieldInternal          = "internal"
)

// FieldChange records one differing field of a modified element.
type FieldChange struct {
	Field string
	// Subject names the parameter for per-parameter fields.
	Subject  string
	OldValue any
	NewValue any
}

// Change is one API difference between two snapshots.
type Change struct {
	Type        ChangeType
	Severity    Severity
	Element     Element
	Old         Element // set for Modified only
	Description string
	Details     []FieldChange
}

// FileChange is a file whose checksum changed without any API change
// attributed to it.
type FileChange struct {
	Path        string
	OldChecksum string
	NewChecksum string
}
