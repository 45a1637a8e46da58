package lang

import (
	"fmt"
	"strings"
)

// Version is the ordered template language version. Comparison by value
// is meaningful: later versions are greater.
type Version uint8

const (
	Version1_0 Version = iota + 1
	Version1_1
	Version2_0
	Version2_1
	Version3_0
	Version5_0
	Version6_0
	Version7_0
	Version8_0
	Latest
	Experimental
)

var versionNames = [...]string{
	Version1_0:   "1.0",
	Version1_1:   "1.1",
	Version2_0:   "2.0",
	Version2_1:   "2.1",
	Version3_0:   "3.0",
	Version5_0:   "5.0",
	Version6_0:   "6.0",
	Version7_0:   "7.0",
	Version8_0:   "8.0",
	Latest:       "latest",
	Experimental: "experimental",
}

func (v Version) String() string {
	if int(v) < len(versionNames) && versionNames[v] != "" {
		return versionNames[v]
	}
	return fmt.Sprintf("Version(%d)", uint8(v))
}

// Valid reports whether v is a known version.
func (v Version) Valid() bool {
	return v >= Version1_0 && v <= Experimental
}

// AtLeast reports v >= min.
func (v Version) AtLeast(min Version) bool {
	return v >= min
}

// ParseVersion accepts "3.0", "3", "v3.0", "latest" and "experimental".
func ParseVersion(s string) (Version, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "v")
	if s == "" {
		return 0, fmt.Errorf("empty language version")
	}
	if !strings.Contains(s, ".") && s != "latest" && s != "experimental" {
		s += ".0"
	}
	for v, name := range versionNames {
		if name != "" && name == s {
			return Version(v), nil //nolint:gosec // bounded by versionNames
		}
	}
	return 0, fmt.Errorf("unknown language version %q", s)
}
