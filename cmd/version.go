package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/wikicore/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for wikicore including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version used for compilation
- Target platform (OS/architecture)
- Supported syntaxes

Examples:
  wikicore version              # Show version
  wikicore version --detailed   # Show detailed version info
  wikicore version --format json # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "F", "text", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	AddFlagValidation(versionCmd, "format", func(v string) error {
		return ValidateChoice(v, []string{"text", "json", "yaml"})
	})
}

func runVersionCommand(cmd *cobra.Command, _ []string) error {
	detailed, _ := cmd.Flags().GetBool("detailed")
	out := cmd.OutOrStdout()

	switch versionFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(versionReport())
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(versionReport())
	}

	switch {
	case versionShort:
		fmt.Fprintln(out, version.GetShortVersion())
	case detailed:
		outputVersionDetailed(out)
	default:
		outputVersionDefault(out)
	}
	return nil
}

func outputVersionDefault(out io.Writer) {
	info := version.GetBuildInfo()
	line := "wikicore " + info.Version
	if info.GitCommit != "unknown" && len(info.GitCommit) >= 7 {
		line += " (" + info.GitCommit[:7] + ")"
	}
	if version.IsDirty() {
		line += " (dirty)"
	}
	fmt.Fprintln(out, headerStyle.Render(line))
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(out, "Built: %s\n", info.BuildTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform: %s\n", info.Platform)
}

func outputVersionDetailed(out io.Writer) {
	fmt.Fprintln(out, version.GetDetailedVersion())
	if version.IsDirty() {
		fmt.Fprintln(out, "Working directory: dirty")
	}
	if version.IsRelease() {
		fmt.Fprintln(out, "Build type: release")
	} else {
		fmt.Fprintln(out, "Build type: development")
	}
}

type versionInfo struct {
	version.BuildInfo `yaml:",inline"`
	IsRelease         bool `json:"is_release" yaml:"is_release"`
	IsDirty           bool `json:"is_dirty" yaml:"is_dirty"`
}

func versionReport() versionInfo {
	return versionInfo{
		BuildInfo: *version.GetBuildInfo(),
		IsRelease: version.IsRelease(),
		IsDirty:   version.IsDirty(),
	}
}
