// Command tzconvert compiles Olson/zoneinfo source files into one
// `.ics` timezone file per zone plus a `links.txt` alias index.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"tempical/internal/calendar"
	"tempical/internal/constants"
	"tempical/internal/format/text"
	"tempical/internal/olson"
	"tempical/internal/property"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		startYear int
		endYear   int
		prodID    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:          "tzconvert [flags] DIR",
		Short:        "Compile zoneinfo sources into iCalendar timezone files",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], outputDir, prodID, startYear, endYear, cmd)
		},
	}

	cmd.Flags().IntVar(&startYear, "start", 1800, "First year to expand")
	cmd.Flags().IntVar(&endYear, "end", 2100, "Last year to expand")
	cmd.Flags().StringVar(&prodID, "prodid", calendar.ProdID, "PRODID for generated files")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "zoneinfo", "Output directory")
	return cmd
}

func run(sourceDir, outputDir, prodID string, startYear, endYear int, cmd *cobra.Command) error {
	set := olson.NewSet()

	// Parse every source file, continuing with siblings on failure and
	// reporting the accumulated errors at the end.
	var parseErrs error
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(sourceDir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			parseErrs = multierr.Append(parseErrs, err)
			continue
		}
		err = set.Parse(f, path)
		f.Close()
		if err != nil {
			parseErrs = multierr.Append(parseErrs, err)
		}
	}
	if parseErrs != nil {
		return parseErrs
	}

	descs, err := set.CompileAll(startYear, endYear)
	if err != nil {
		return err
	}

	for _, desc := range descs {
		cal := calendar.NewCalendar()
		cal.ReplaceProperty(property.NewText("PRODID", prodID))
		cal.AddComponent(calendar.NewVTimezone(desc))

		path := filepath.Join(outputDir, filepath.FromSlash(desc.ID)+".ics")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(text.Emit(cal)), 0o644); err != nil {
			return fmt.Errorf(constants.ErrMsgFailedToWriteFile, err)
		}
		cmd.Printf(constants.MsgCreatedFile, path)
	}

	return writeLinks(set, outputDir)
}

// writeLinks emits the alias index: one `alias<TAB>target` per line,
// sorted by alias.
func writeLinks(set *olson.Set, outputDir string) error {
	aliases := append([]string(nil), set.LinkOrder...)
	sort.Strings(aliases)
	var b strings.Builder
	for _, alias := range aliases {
		b.WriteString(alias)
		b.WriteByte('\t')
		b.WriteString(set.Links[alias])
		b.WriteByte('\n')
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputDir, "links.txt"), []byte(b.String()), 0o644)
}
