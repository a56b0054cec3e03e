package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/py2rs-dev/py2rs/internal/logging"
)

// version is filled in when building with a release tag; "go run"/"go
// install" builds fall back to runtime/debug.ReadBuildInfo, the way the
// pack's go-corset root command resolves its own version string.
var version string

// fs is the filesystem every subcommand reads source and writes output
// through. Tests swap it for afero.NewMemMapFs() so the CLI's file I/O is
// exercised without touching disk.
var fs afero.Fs = afero.NewOsFs()

var rootCmd = &cobra.Command{
	Use:   "py2rsc",
	Short: "Transpile pre-parsed Python modules to Rust.",
	Long: "py2rsc lowers pre-parsed Python modules (JSON pyast.Module dumps, " +
		"produced upstream by a real Python parser) to idiomatic Rust source.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Configure(GetFlag(cmd, "verbose"))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the py2rsc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("py2rsc", resolveVersion())
	},
}

func resolveVersion() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}

	return "(unknown version)"
}

// Execute runs the root command; called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetFlag reads a bool flag, defaulting to false on lookup failure.
func GetFlag(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// GetString reads a string flag, defaulting to "" on lookup failure.
func GetString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.AddCommand(versionCmd)
}
