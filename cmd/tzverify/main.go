// Command tzverify compares two zoneinfo hierarchies: it expands every
// zone in each over a year window and prints the symmetric difference
// of their transition tuples.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"tempical/internal/olson"
	"tempical/internal/value"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		verbose   bool
		quiet     bool
		startYear int
		endYear   int
	)

	cmd := &cobra.Command{
		Use:          "tzverify [flags] DIR1 DIR2",
		Short:        "Diff the expanded transitions of two zoneinfo hierarchies",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], args[1], startYear, endYear, verbose, quiet)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Report matching zones too")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only set the exit status")
	cmd.Flags().IntVar(&startYear, "start", 1918, "First year to compare")
	cmd.Flags().IntVar(&endYear, "end", 2030, "Last year to compare")
	return cmd
}

func run(cmd *cobra.Command, dir1, dir2 string, startYear, endYear int, verbose, quiet bool) error {
	set1, err := loadHierarchy(dir1)
	if err != nil {
		return err
	}
	set2, err := loadHierarchy(dir2)
	if err != nil {
		return err
	}

	zones := map[string]bool{}
	for name := range set1.Zones {
		zones[name] = true
	}
	for name := range set2.Zones {
		zones[name] = true
	}
	names := make([]string, 0, len(zones))
	for name := range zones {
		names = append(names, name)
	}
	sort.Strings(names)

	differing := 0
	for _, name := range names {
		t1 := transitionTuples(set1, name, startYear, endYear)
		t2 := transitionTuples(set2, name, startYear, endYear)
		only1, only2 := symmetricDifference(t1, t2)
		if len(only1) == 0 && len(only2) == 0 {
			if verbose && !quiet {
				cmd.Printf("%s: OK (%d transitions)\n", name, len(t1))
			}
			continue
		}
		differing++
		if quiet {
			continue
		}
		cmd.Printf("%s: %d only in %s, %d only in %s\n", name, len(only1), dir1, len(only2), dir2)
		for _, tup := range only1 {
			cmd.Printf("  < %s\n", tup)
		}
		for _, tup := range only2 {
			cmd.Printf("  > %s\n", tup)
		}
	}

	if differing > 0 {
		return fmt.Errorf("%d zone(s) differ", differing)
	}
	return nil
}

func loadHierarchy(dir string) (*olson.Set, error) {
	set := olson.NewSet()
	var errs error
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			return nil
		}
		defer f.Close()
		if err := set.Parse(f, path); err != nil {
			errs = multierr.Append(errs, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}
	return set, nil
}

// transitionTuples renders a zone's transitions as comparable strings.
// A zone missing from one hierarchy yields no tuples, so every
// transition of the other side shows up in the difference.
func transitionTuples(set *olson.Set, name string, startYear, endYear int) []string {
	if _, ok := set.Zones[name]; !ok {
		return nil
	}
	transitions, err := set.ExpandZone(name, startYear, endYear)
	if err != nil {
		return []string{fmt.Sprintf("%s: expansion failed: %v", name, err)}
	}
	out := make([]string, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, fmt.Sprintf("%s %s %d -> %d %s",
			name, value.RenderInstant(t.UTC), t.OffsetFrom, t.OffsetTo, t.Name))
	}
	return out
}

func symmetricDifference(a, b []string) (onlyA, onlyB []string) {
	inB := map[string]int{}
	for _, s := range b {
		inB[s]++
	}
	for _, s := range a {
		if inB[s] > 0 {
			inB[s]--
			continue
		}
		onlyA = append(onlyA, s)
	}
	for s, n := range inB {
		for i := 0; i < n; i++ {
			onlyB = append(onlyB, s)
		}
	}
	sort.Strings(onlyB)
	return onlyA, onlyB
}
