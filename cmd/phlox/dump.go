package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"phlox/internal/driver"
	"phlox/internal/types"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [directory]",
	Short: "Print the loaded symbol graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

var (
	kindColor   = color.New(color.FgMagenta)
	nameColor   = color.New(color.FgGreen, color.Bold)
	mangleColor = color.New(color.Faint)
)

type dumpType struct {
	Name       string   `json:"name"`
	Metadata   string   `json:"metadata_name"`
	Kind       string   `json:"kind"`
	Arity      int      `json:"arity,omitempty"`
	Base       string   `json:"base,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Enum       string   `json:"enum_underlying,omitempty"`
	Members    []string `json:"members,omitempty"`
}

func runDump(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	loaded, err := driver.LoadProject(cmd.Context(), driver.Config{
		Root:           root,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return err
	}
	res := loaded.Result
	out := cmd.OutOrStdout()

	ids := make([]types.NamedID, 0, len(res.Declared)+len(res.Constructed))
	ids = append(ids, res.Declared...)
	ids = append(ids, res.Constructed...)

	switch strings.ToLower(format) {
	case "json":
		payload := make([]dumpType, 0, len(ids))
		for _, id := range ids {
			payload = append(payload, collectType(res.Registry, id))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		for _, id := range ids {
			printType(out, res.Registry, id)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func collectType(r *types.Registry, id types.NamedID) dumpType {
	d := dumpType{
		Name:     r.DisplayName(id),
		Metadata: r.MetadataName(id),
		Kind:     r.TypeKindOf(id).String(),
		Arity:    r.Arity(id),
	}
	if base, ok := r.BaseType(id); ok {
		d.Base = r.DisplayName(base)
	}
	for _, iface := range r.AllInterfaces(id) {
		d.Interfaces = append(d.Interfaces, r.DisplayName(iface))
	}
	if under := r.EnumUnderlying(id); under != types.NoTypeID {
		d.Enum = r.Types.MustLookup(under).Kind.String()
	}
	for _, m := range r.MembersOf(id) {
		sym := r.Syms.Get(m)
		entry := r.Syms.NameOf(m) + " (" + sym.Kind.String()
		if flags := sym.Flags.Strings(); len(flags) > 0 {
			entry += " " + strings.Join(flags, " ")
		}
		d.Members = append(d.Members, entry+")")
	}
	return d
}

func printType(out io.Writer, r *types.Registry, id types.NamedID) {
	d := collectType(r, id)
	fmt.Fprintf(out, "%s %s", kindColor.Sprint(d.Kind), nameColor.Sprint(d.Name))
	if r.MangleName(id) {
		fmt.Fprintf(out, "  %s", mangleColor.Sprint(d.Metadata))
	}
	fmt.Fprintln(out)
	if d.Base != "" {
		fmt.Fprintf(out, "  base: %s\n", d.Base)
	}
	if len(d.Interfaces) > 0 {
		fmt.Fprintf(out, "  implements: %s\n", strings.Join(d.Interfaces, ", "))
	}
	if d.Enum != "" {
		fmt.Fprintf(out, "  underlying: %s\n", d.Enum)
	}
	for _, m := range d.Members {
		fmt.Fprintf(out, "  member: %s\n", m)
	}
}
