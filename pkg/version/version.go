// Package version evaluates SemVer constraints against the running shell
// version. Web content uses this (via the system module) to gate features on
// the native app version instead of sniffing user agents.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const logPrefix = "version:version"

// IsValid reports whether s parses as a semantic version.
func IsValid(s string) bool {
	_, err := semver.NewVersion(s)
	return err == nil
}

// Satisfies reports whether version meets the constraint expression
// (e.g. ">=2.1.0", "^3.0.0", "~1.2.0").
func Satisfies(version, constraint string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("%s - invalid version %q: %w", logPrefix, version, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("%s - invalid constraint %q: %w", logPrefix, constraint, err)
	}
	return c.Check(v), nil
}

// Compare returns -1, 0 or 1 for a < b, a == b, a > b.
func Compare(a, b string) (int, error) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("%s - invalid version %q: %w", logPrefix, a, err)
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("%s - invalid version %q: %w", logPrefix, b, err)
	}
	return va.Compare(vb), nil
}
