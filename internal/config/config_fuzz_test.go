package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// FuzzLoadConfig tests configuration loading with malformed inputs
func FuzzLoadConfig(f *testing.F) {
	f.Add(`cache:
  max_entries: 10
  ttl: 1m`)
	f.Add(`parser:
  broken_links: sometimes`)
	f.Add(`cache:
  max_entries: "lots"`)
	f.Add(`query:
  property_types:
    - class: A
      property: b`)
	f.Add(`malformed: yaml: content`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, yamlContent string) {
		if len(yamlContent) > 50000 {
			t.Skip("Config content too large")
		}
		configFile := filepath.Join(t.TempDir(), ".wikicore.yml")
		if err := os.WriteFile(configFile, []byte(yamlContent), 0o644); err != nil {
			t.Skip("Could not write config file")
		}

		v := viper.New()
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return
		}
		config, err := LoadFrom(v)
		if err != nil {
			return
		}
		if config.Cache.MaxEntries < 1 {
			t.Errorf("accepted cache size %d", config.Cache.MaxEntries)
		}
		if config.Transformation.MaxMacroDepth < 1 {
			t.Errorf("accepted macro depth %d", config.Transformation.MaxMacroDepth)
		}
		if config.Parser.BrokenLinks != "abort" && config.Parser.BrokenLinks != "render" {
			t.Errorf("accepted broken link policy %q", config.Parser.BrokenLinks)
		}
	})
}
