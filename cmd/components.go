package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/wikicore/internal/component"
)

var componentsCmd = &cobra.Command{
	Use:     "components",
	Aliases: []string{"c"},
	Short:   "List the registered components",
	Long: `List every component registered at startup: parsers, renderers, macros,
transformations, macro refactorings and event listeners.

Examples:
  wikicore components
  wikicore components -o json
  wikicore components --role macro.Macro`,
	Args: cobra.NoArgs,
	RunE: runComponents,
}

var (
	componentsOutput string
	componentsRole   string
)

func init() {
	rootCmd.AddCommand(componentsCmd)

	addOutputFlag(componentsCmd, &componentsOutput)
	componentsCmd.Flags().StringVarP(&componentsRole, "role", "r", "", "only list components of this role")
}

// componentInfo is the listed form of a descriptor.
type componentInfo struct {
	Role           string `json:"role" yaml:"role"`
	Hint           string `json:"hint" yaml:"hint"`
	Implementation string `json:"implementation,omitempty" yaml:"implementation,omitempty"`
	Instantiation  string `json:"instantiation" yaml:"instantiation"`
}

func runComponents(cmd *cobra.Command, _ []string) error {
	c, err := newContainer(cmd, nil)
	if err != nil {
		return err
	}
	infos := listComponents(c.Components, componentsRole)

	out := cmd.OutOrStdout()
	switch componentsOutput {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(infos)
	default:
		return outputComponentsTable(out, infos)
	}
}

func listComponents(m *component.Manager, role string) []componentInfo {
	var infos []componentInfo
	for _, rh := range m.RoleHints() {
		if role != "" && !matchesRole(rh.Role, role) {
			continue
		}
		d, ok := m.Descriptor(rh.Role, rh.Hint)
		if !ok {
			continue
		}
		infos = append(infos, componentInfo{
			Role:           string(d.Role),
			Hint:           d.Hint,
			Implementation: d.Implementation,
			Instantiation:  d.Instantiation.String(),
		})
	}
	return infos
}

// matchesRole accepts the full role name or its package-qualified suffix,
// so "macro.Macro" selects ".../internal/macro.Macro".
func matchesRole(r component.Role, name string) bool {
	return string(r) == name || strings.HasSuffix(string(r), "/"+name)
}

func outputComponentsTable(out io.Writer, infos []componentInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("ROLE")+"\t"+headerStyle.Render("HINT")+"\t"+headerStyle.Render("IMPLEMENTATION"))
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Role, info.Hint, info.Implementation)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d components", len(infos))))
	return nil
}
