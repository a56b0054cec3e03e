package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/py2rs-dev/py2rs/internal/logging"
	"github.com/py2rs-dev/py2rs/internal/pyast"
	"github.com/py2rs-dev/py2rs/pkg/transpile"
)

var transpileCmd = &cobra.Command{
	Use:   "transpile <module.json> [module.json...]",
	Short: "Transpile pre-parsed Python modules to Rust",
	Long: "transpile reads one or more JSON-encoded pyast.Module files — produced " +
		"upstream by a real Python parser, not raw .py source — and writes the " +
		"rendered Rust source for each one next to it with a .rs extension.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranspile(cmd.Context(), fs, args, GetString(cmd, "out"))
	},
}

func init() {
	rootCmd.AddCommand(transpileCmd)
	transpileCmd.Flags().StringP("out", "o", "", "output directory (default: alongside each input file)")
}

func runTranspile(ctx context.Context, fsys afero.Fs, paths []string, outDir string) error {
	_, opts, err := loadOptions(fsys, paths[0])
	if err != nil {
		return err
	}

	sources := make([]transpile.Source, 0, len(paths))

	for _, p := range paths {
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		mod, err := pyast.Decode(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", p, err)
		}

		sources = append(sources, transpile.Source{Name: moduleName(p), Module: mod})
	}

	results := transpile.TranspileAll(ctx, sources, opts)

	var failed int

	for i, r := range results {
		log := logging.ForModule(r.Name)

		if r.Err != nil {
			failed++
			log.WithError(r.Err).Error("transpile failed")

			continue
		}

		target := outputPath(paths[i], outDir)
		if err := afero.WriteFile(fsys, target, []byte(r.Target), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}

		log.Infof("wrote %s", target)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d module(s) failed to transpile", failed, len(results))
	}

	return nil
}

func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func outputPath(inputPath, outDir string) string {
	base := moduleName(inputPath) + ".rs"
	if outDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}

	return filepath.Join(outDir, base)
}
