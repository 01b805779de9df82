// Package cmd provides the wikicore command-line interface.
//
// Configuration is read from, in order of precedence:
//
//  1. command-line flags (--config, --log-level, --log-format)
//  2. the WIKICORE_CONFIG_FILE environment variable, naming a config file
//  3. individual environment variables (WIKICORE_PARSER_DEFAULT_SYNTAX, ...)
//  4. .wikicore.yml in the current directory
//
// Environment variables follow the WIKICORE_<SECTION>_<OPTION> pattern.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/wikicore/internal/config"
	"github.com/conneroisu/wikicore/internal/di"
	"github.com/conneroisu/wikicore/internal/document"
	"github.com/conneroisu/wikicore/internal/logging"
	"github.com/conneroisu/wikicore/internal/syntax"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wikicore",
	Short: "Parse, transform and render wiki documents",
	Long: `wikicore runs the wiki rendering pipeline from the command line: documents
are parsed into a block tree, macros are expanded, and the result is rendered
to another syntax.

Quick Start:
  wikicore render page.xwiki          Render a document to XHTML
  wikicore parse page.md              Print the event stream of a document
  wikicore ref "doc:Main.WebHome"     Parse a resource reference
  wikicore query "where doc.space = 'Main'"
  wikicore components                 List registered components
  wikicore watch ./pages              Re-render documents on change

Supported syntaxes: xwiki/2.1, markdown/1.2, xhtml/1.0, html/5.0, plain/1.0.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .wikicore.yml, can also use WIKICORE_CONFIG_FILE env var)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "pretty", "log format (json, text, pretty)")
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

// initConfig selects the config file: --config first, then
// WIKICORE_CONFIG_FILE, then .wikicore.yml in the current directory.
// A missing file leaves the defaults in place.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("WIKICORE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wikicore")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, dimStyle.Render("Using config file: "+viper.ConfigFileUsed()))
	}
}

// commandContext returns the context of cmd, which is nil when the command
// was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newContainer loads the configuration and bootstraps the pipeline.
// Overrides are applied to the configuration before validation.
func newContainer(cmd *cobra.Command, overrides map[string]interface{}) (*di.Container, error) {
	for key, value := range overrides {
		viper.Set(key, value)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	container, err := di.New(commandContext(cmd), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize the pipeline: %w", err)
	}
	return container, nil
}

// readInput returns the content of the file named by args, or standard
// input when there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) (content, path string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), "", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}

// inputSyntax returns the syntax named by flag, else the syntax implied by
// the extension of path, else fallback.
func inputSyntax(flag, path, fallback string) (syntax.Syntax, error) {
	if flag != "" {
		return syntax.Parse(flag)
	}
	if s, ok := document.Extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return s, nil
	}
	return syntax.Parse(fallback)
}
