package main

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memtrack/internal/rawmem"
)

// Release builds override these with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "0.1.0"
	commit  = ""
)

type versionJSON struct {
	Version  string   `json:"version"`
	Commit   string   `json:"commit,omitempty"`
	Go       string   `json:"go"`
	Platform string   `json:"platform"`
	Backends []string `json:"backends"`
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

func runVersion() error {
	v := buildVersion()
	if jsonOut {
		return printJSON(v)
	}
	printInfo("memtrack %s\n", v.Version)
	if v.Commit != "" {
		printInfo("  commit:   %s\n", v.Commit)
	}
	printInfo("  go:       %s %s\n", v.Go, v.Platform)
	printInfo("  backends: %s\n", strings.Join(v.Backends, ", "))
	return nil
}

// buildVersion falls back to the VCS revision stamped by the go tool when commit is unset.
func buildVersion() versionJSON {
	v := versionJSON{
		Version:  version,
		Commit:   commit,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if v.Commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					v.Commit = s.Value
				}
			}
		}
	}
	for _, k := range rawmem.Kinds() {
		v.Backends = append(v.Backends, string(k))
	}
	return v
}
