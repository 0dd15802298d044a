package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"phlox/internal/diag"
	"phlox/internal/driver"
	"phlox/internal/observ"
	"phlox/internal/testkit"
)

var checkCmd = &cobra.Command{
	Use:   "check [directory]",
	Short: "Load a project and verify its symbol graph",
	Long: `Load every symbol manifest the project lists, bind the declarations
into a type registry, report diagnostics and verify registry invariants.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("snapshot-cache", false, "cache parsed manifests on disk")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	jobs, _ := cmd.Flags().GetInt("jobs")

	var cache *driver.SnapshotCache
	if useCache, _ := cmd.Flags().GetBool("snapshot-cache"); useCache {
		cache, err = driver.OpenSnapshotCache("phlox")
		if err != nil {
			return fmt.Errorf("failed to open snapshot cache: %w", err)
		}
	}

	timer := observ.NewTimer()
	loaded, err := driver.LoadProject(cmd.Context(), driver.Config{
		Root:           root,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
		Timer:          timer,
	})
	if err != nil {
		return err
	}

	res := loaded.Result
	res.Bag.Sort()
	out := cmd.OutOrStdout()
	for _, d := range res.Bag.Items() {
		printDiagnostic(out, d)
	}

	if err := testkit.CheckRegistryInvariants(res.Registry); err != nil {
		return fmt.Errorf("registry invariant violated: %w", err)
	}

	if timings {
		fmt.Fprint(out, timer.Summary())
	}
	if !quiet {
		fmt.Fprintf(out, "%s: %d types declared, %d constructed, %d diagnostics\n",
			loaded.Project.Name, len(res.Declared), len(res.Constructed), res.Bag.Len())
	}
	if res.Bag.HasErrors() {
		os.Exit(1)
	}
	return nil
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan)
	noteColor  = color.New(color.Faint)
)

func printDiagnostic(out io.Writer, d diag.Diagnostic) {
	c := infoColor
	switch d.Severity {
	case diag.SevError:
		c = errorColor
	case diag.SevWarning:
		c = warnColor
	}
	fmt.Fprintf(out, "%s[%s]: %s\n", c.Sprint(d.Severity), d.Code, d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(out, "  %s %s\n", noteColor.Sprint("note:"), n.Msg)
	}
}
