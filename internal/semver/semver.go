// Package semver turns a list of API changes into a release severity and the
// next version number.
package semver

import (
	"fmt"
	"strings"

	"github.com/everstacklabs/apidiff/internal/model"
)

// Version is a MAJOR.MINOR.PATCH triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// PreRelease reports whether v is below 1.0.0.
func (v Version) PreRelease() bool {
	return v.Major == 0
}

// Parse reads up to three dot-separated components. Each component uses its
// leading decimal digits; anything missing or non-numeric reads as 0, so
// "1.2" is 1.2.0, "2.0.0-beta" is 2.0.0 and "" is 0.0.0. A leading "v" is
// accepted.
func Parse(version string) Version {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	parts := strings.SplitN(version, ".", 4)

	var nums [3]int
	for i := 0; i < len(nums) && i < len(parts); i++ {
		nums[i] = leadingInt(parts[i])
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}
}

func leadingInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// Bump returns v advanced by severity. Unknown severities leave v unchanged.
func (v Version) Bump(sev model.Severity) Version {
	switch sev {
	case model.Major:
		return Version{Major: v.Major + 1}
	case model.Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case model.Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
	return v
}

// Analyze aggregates changes into one severity: major beats minor beats
// patch, and an empty list is a patch. Entries without an element or with an
// unknown severity are skipped. Below 1.0.0 a major result is reported as
// minor unless strict is set.
func Analyze(changes []model.Change, currentVersion string, strict bool) model.Severity {
	sev := model.Patch
	for _, c := range changes {
		if c.Element == nil || !c.Severity.Valid() {
			continue
		}
		sev = sev.Max(c.Severity)
	}
	if sev == model.Major && !strict && Parse(currentVersion).PreRelease() {
		return model.Minor
	}
	return sev
}

// RecommendedVersion bumps currentVersion by the aggregate severity of changes.
func RecommendedVersion(currentVersion string, changes []model.Change, strict bool) string {
	return Parse(currentVersion).Bump(Analyze(changes, currentVersion, strict)).String()
}

// ShouldBumpMajor reports whether changes require a major release.
func ShouldBumpMajor(changes []model.Change, currentVersion string, strict bool) bool {
	return Analyze(changes, currentVersion, strict) == model.Major
}

// ShouldBumpMinor reports whether changes require a minor release.
func ShouldBumpMinor(changes []model.Change, currentVersion string, strict bool) bool {
	return Analyze(changes, currentVersion, strict) == model.Minor
}
