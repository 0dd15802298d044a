package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"phlox/internal/driver"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new phlox project",
	Long: `Initialize a new phlox project by creating a project file (phlox.toml)
and a starter symbol manifest (types/core.toml). If [path|name] is omitted,
initializes the current directory. If a non-existing name is provided, a
directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "phlox-project"
	}

	projectPath := filepath.Join(target, driver.ProjectFileName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", projectPath)
	}

	if err := os.WriteFile(projectPath, []byte(defaultProjectFile(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	manifestPath := filepath.Join(target, "types", "core.toml")
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\ncreated %s\n", projectPath, manifestPath)
	return nil
}

func defaultProjectFile(name string) string {
	return fmt.Sprintf(`[project]
name = %q
manifests = ["types/core.toml"]
`, name)
}

const defaultManifest = `# Symbol manifest. Each [[type]] declares one named type; [[construct]]
# requests a generic instantiation.

[[type]]
name = "Box"
kind = "class"
params = ["T"]

[[type.member]]
name = "__construct"
kind = "method"
public = true

[[type.member]]
name = "value"
kind = "field"
public = true

[[construct]]
type = "Box"
args = ["int"]
`
