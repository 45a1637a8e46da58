// Package version holds build information of the quill binary. The
// variables are set with -ldflags "-X quill/internal/version.Version=...".
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	Version    = "0.1.0-dev"
	GitCommit  = ""
	GitMessage = ""
	BuildDate  = "" // ISO-8601
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored tints the major, minor and patch numbers of Version. A version
// that is not dotted comes back unchanged.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2]) + suffix
}

// Info renders the version followed by the optional build fields.
func Info() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "quill %s\n", Colored())
	if GitCommit != "" {
		fmt.Fprintf(&sb, "commit: %s\n", GitCommit)
	}
	if GitMessage != "" {
		fmt.Fprintf(&sb, "message: %s\n", GitMessage)
	}
	if BuildDate != "" {
		fmt.Fprintf(&sb, "built: %s\n", BuildDate)
	}
	return sb.String()
}
