package version //import "github.com/liber-hq/liber/version"

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the semver of the current release.
var Version = "0.1.0"

// DevVersion is the pre-release suffix used by development builds.
var DevVersion = "dev"

func GetCurrentVersion() string {
	return Version
}

// GetSchemaVersion returns the version that owns the database schema: the
// minor version with a zero patch.
func GetSchemaVersion(version string) string {
	return GetMinorVersion(version) + ".0"
}

// GetMinorVersion returns the major.minor prefix of a version.
func GetMinorVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return version
	}
	return strings.Join(parts[:2], ".")
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) >= 0
}

func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > 0
}

// SortVersion sorts a list of versions in ascending semver order, in place.
func SortVersion(versions []string) []string {
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(fmt.Sprintf("v%s", versions[i]), fmt.Sprintf("v%s", versions[j])) < 0
	})
	return versions
}
