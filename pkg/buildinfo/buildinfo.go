// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.shadegraph.dev/pkg/buildinfo.Var=value" to "go build" or
// "go get".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"src.shadegraph.dev/pkg/graphdoc"
	"src.shadegraph.dev/pkg/prog"
)

// VersionBase identifies the version of shadegraph. On development commits,
// it identifies the next release.
const VersionBase = "0.3.0"

// VCSOverride may be set during compilation to "time-commit" (e.g.
// "20220403135300-63ff7b2cc2e4") for builds whose VCS information is not
// available to the Go toolchain.
var VCSOverride string

// Reproducible identifies whether the build is reproducible. This can be
// overridden when building.
var Reproducible = "false"

// Type contains all the build information fields.
type Type struct {
	Version      string `json:"version"`
	GoVersion    string `json:"goversion"`
	Reproducible bool   `json:"reproducible"`
	// Format is the graph document format version this build writes.
	Format string `json:"format"`
}

// Value contains all the build information.
var Value = Type{
	Version:      devVersion(VersionBase, VCSOverride, debug.ReadBuildInfo),
	GoVersion:    runtime.Version(),
	Reproducible: Reproducible == "true",
	Format:       graphdoc.CurrentFormat,
}

func devVersion(next, vcsOverride string, readBuildInfo func() (*debug.BuildInfo, bool)) string {
	if vcsOverride != "" {
		return next + "-dev.0." + vcsOverride
	}
	fallback := next + "-dev.unknown"
	bi, ok := readBuildInfo()
	if !ok {
		return fallback
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}
	var revision, vcsTime string
	modified := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			vcsTime = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(revision) < 12 {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, vcsTime)
	if err != nil {
		return fallback
	}
	v := next + "-dev.0." + t.UTC().Format("20060102150405") + "-" + revision[:12]
	if modified {
		v += "-dirty"
	}
	return v
}

// Program is the buildinfo subprogram.
type Program struct{}

func (Program) Commands(fds [3]*os.File, _ *prog.Flags) []*cobra.Command {
	var jsonVersion, jsonBuildInfo bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if jsonVersion {
				fmt.Fprintln(fds[1], mustToJSON(Value.Version))
			} else {
				fmt.Fprintln(fds[1], Value.Version)
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&jsonVersion, "json", false, "show output in JSON")

	buildInfoCmd := &cobra.Command{
		Use:   "buildinfo",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if jsonBuildInfo {
				fmt.Fprintln(fds[1], mustToJSON(Value))
				return nil
			}
			fmt.Fprintln(fds[1], "Version:", Value.Version)
			fmt.Fprintln(fds[1], "Go version:", Value.GoVersion)
			fmt.Fprintln(fds[1], "Document format:", Value.Format)
			return nil
		},
	}
	buildInfoCmd.Flags().BoolVar(&jsonBuildInfo, "json", false, "show output in JSON")
	return []*cobra.Command{versionCmd, buildInfoCmd}
}

func mustToJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
