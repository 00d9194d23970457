package main

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	yaml "gopkg.in/yaml.v2"

	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// cliConfig holds the settings every subcommand needs, populated from
// flags and, for anything a flag left at its zero value, from
// ~/.semalogrc.
type cliConfig struct {
	RepoPath   string `yaml:"repo"`
	LedgerPath string `yaml:"ledger"`
}

// load reads ~/.semalogrc (if present) and fills in any field the user did
// not set explicitly on the command line, the same precedence the ambient
// stack gives explicit flags over a home-directory config file.
func (c *cliConfig) load(flags *pflag.FlagSet) error {
	home, err := homedir.Dir()
	if err != nil {
		home = ""
	}
	if home != "" {
		if data, err := os.ReadFile(filepath.Join(home, ".semalogrc")); err == nil {
			var fromFile cliConfig
			if err := yaml.Unmarshal(data, &fromFile); err != nil {
				return err
			}
			if f := flags.Lookup("repo"); f != nil && !f.Changed && fromFile.RepoPath != "" {
				c.RepoPath = fromFile.RepoPath
			}
			if f := flags.Lookup("ledger"); f != nil && !f.Changed && fromFile.LedgerPath != "" {
				c.LedgerPath = fromFile.LedgerPath
			}
		}
	}
	if c.LedgerPath == "" {
		c.LedgerPath = filepath.Join(c.RepoPath, ".semalog-ledger")
	}
	return nil
}

// Configure applies facts keyed by ListConfigurationOptions' Name fields,
// the same fact-map idiom the rest of semalog's components use instead of
// bespoke setters, so a future embedder can drive cliConfig without cobra.
func (c *cliConfig) Configure(facts map[string]interface{}) error {
	if v, ok := facts["RepoPath"]; ok {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("RepoPath: expected string, got %T", v)
		}
		c.RepoPath = s
	}
	if v, ok := facts["LedgerPath"]; ok {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("LedgerPath: expected string, got %T", v)
		}
		c.LedgerPath = s
	}
	return nil
}

// ListConfigurationOptions describes cliConfig's settable fields the same
// way a PipelineItem lists its tunables, so "semalog describe" can print
// them. The --repo and --ledger flags in main.go carry their own help text.
func (c *cliConfig) ListConfigurationOptions() []core.ConfigurationOption {
	return []core.ConfigurationOption{
		{
			Name:        "RepoPath",
			Description: "path to the git repository to read commits and trees from",
			Flag:        "repo",
			Type:        core.PathConfigurationOption,
			Default:     ".",
		},
		{
			Name:        "LedgerPath",
			Description: "path to the change ledger file, defaulting to <repo>/.semalog-ledger",
			Flag:        "ledger",
			Type:        core.PathConfigurationOption,
			Default:     "",
		},
	}
}
