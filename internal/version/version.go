// Package version reports the patchrun build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time via ldflags. When unset, the VCS stamp the Go
// toolchain embeds in module builds is used instead.
var (
	Commit    = ""
	BuildTime = ""
)

// String returns "patchrun <module version> (commit: <short>, built: <time>)".
func String() string {
	info, _ := debug.ReadBuildInfo()
	return format(info, Commit, BuildTime)
}

func format(info *debug.BuildInfo, commit, built string) string {
	release := "dev"
	modified := false
	if info != nil {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			release = v
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	commit = short(commit)
	if modified {
		commit += "-dirty"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("patchrun %s (commit: %s, built: %s)", release, commit, built)
}

func short(commit string) string {
	if commit == "" {
		return "unknown"
	}
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
