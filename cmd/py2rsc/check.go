package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/py2rs-dev/py2rs/internal/config"
	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/pragma"
	"github.com/py2rs-dev/py2rs/internal/pyast"
	"github.com/py2rs-dev/py2rs/pkg/transpile"
)

var checkCmd = &cobra.Command{
	Use:   "check <file> [file...]",
	Short: "Report diagnostics for Python modules without writing Rust output",
	Long: "check accepts JSON-encoded pyast.Module dumps (run through the full " +
		"pipeline, diagnostics collected but no .rs written) and raw .py source " +
		"files (scanned for unrecognized pragma comments only, since no parser " +
		"is available to check them any more deeply).",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, failed, err := runCheck(cmd.Context(), fs, args)
		if err != nil {
			return err
		}

		renderCheckTable(os.Stdout, rows)

		if failed {
			return fmt.Errorf("check found error-severity diagnostics")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkRow struct {
	File     string
	Severity string
	Kind     string
	Code     string
	Message  string
}

func runCheck(ctx context.Context, fsys afero.Fs, paths []string) ([]checkRow, bool, error) {
	_, opts, err := loadOptions(fsys, paths[0])
	if err != nil {
		return nil, false, err
	}

	var rows []checkRow

	var failed bool

	for _, p := range paths {
		data, err := afero.ReadFile(fsys, p)
		if err != nil {
			return nil, false, fmt.Errorf("reading %s: %w", p, err)
		}

		if filepath.Ext(p) == ".py" {
			for _, up := range unknownPragmas(data) {
				rows = append(rows, checkRow{
					File: p, Severity: "warning", Kind: "unsupported",
					Code: "pragma", Message: fmt.Sprintf("unrecognized pragma key %q", up.Key),
				})
			}

			continue
		}

		mod, err := pyast.Decode(data)
		if err != nil {
			return nil, false, fmt.Errorf("decoding %s: %w", p, err)
		}

		bag := checkModule(ctx, mod, moduleName(p), opts)
		for _, d := range bag.Items() {
			if d.Severity == diag.Error {
				failed = true
			}

			rows = append(rows, checkRow{
				File: p, Severity: d.Severity.String(), Kind: d.Kind.String(),
				Code: d.Code, Message: d.Message,
			})
		}
	}

	return rows, failed, nil
}

func checkModule(ctx context.Context, mod *pyast.Module, name string, opts config.CodegenOptions) diag.Bag {
	hirMod, bag, err := transpile.ParseToHIR(ctx, mod, name)
	if err != nil {
		return bag
	}

	_, moreDiags, _ := transpile.HIRToTarget(ctx, hirMod, opts)
	bag.Merge(&moreDiags)

	return bag
}

// unknownPragmas scans raw .py source text for pragma comment lines and
// reports the ones pragma.KnownKeys doesn't recognize.
func unknownPragmas(source []byte) []pragma.Pragma {
	var lines []string

	scanner := bufio.NewScanner(bytes.NewReader(source))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	return pragma.Unknown(pragma.ParseLines(lines))
}

func renderCheckTable(w io.Writer, rows []checkRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Severity", "Kind", "Code", "Message"})

	if len(rows) == 0 {
		table.SetCaption(true, "no diagnostics")
	}

	for _, r := range rows {
		table.Append([]string{r.File, r.Severity, r.Kind, r.Code, r.Message})
	}

	table.Render()
}
