/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/fatih/structs"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var (
	// Store the result of binding cobra flags
	Config  string
	Verbose bool

	ParsedConfig YamlConfig
)

// Build the cobra command that handles our command line tool.
var rootCmd = &cobra.Command{
	Use:   "confluence-export",
	Short: "Export a Confluence page tree to local Markdown",
	Long: `
Export a Confluence wiki page (and optionally its descendants) to local Markdown
files, with embedded images and diagram macros rewritten into plain Markdown
references and downloaded alongside.
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("confluence-export: failed to initialise config: %w", err)
		}
		return nil
	},
}

func init() {
	// Define cobra flags, the default value has the lowest (least significant) precedence
	rootCmd.PersistentFlags().StringVar(&Config, "config", "", "config file location (default: ~/.config/confluence-export.yaml, respects CONFLUENCE_EXPORT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "display debug output")
}

func initializeConfig(cmd *cobra.Command) error {
	explicit := Config != "" || os.Getenv("CONFLUENCE_EXPORT_CONFIG") != ""

	if Config == "" {
		// Did the user provide an ENV?
		envConfig := os.Getenv("CONFLUENCE_EXPORT_CONFIG")
		if envConfig != "" {
			Config = envConfig
		} else {
			// As fallback, search for config in home XDG-ish directory
			Config = "~/.config/confluence-export.yaml"
		}
	}
	config, err := homedir.Expand(Config)
	if err != nil {
		return fmt.Errorf("confluence-export: unable to expand homedir: %w", err)
	}
	Config = config

	if _, err := os.Stat(Config); errors.Is(err, os.ErrNotExist) {
		if !explicit {
			// No config file is fine; everything has a flag or env default.
			return nil
		}
		return fmt.Errorf("confluence-export: specified config file does not exist: %w", err)
	}

	yamlFile, err := os.ReadFile(Config)
	if err != nil {
		return fmt.Errorf("confluence-export: error reading config file: %w", err)
	}

	// I'd like to bark if a user sets a flag we don't recognise:
	if err := yaml.UnmarshalStrict(yamlFile, &ParsedConfig); err != nil {
		return fmt.Errorf("confluence-export: issue parsing config file: %w", err)
	}

	if err := bindFlags(cmd, ParsedConfig); err != nil {
		return fmt.Errorf("confluence-export: failed to bind flags: %w", err)
	}

	return nil
}

type YamlConfig struct {
	Recursive      *bool `yaml:"recursive"`
	IncludeImages  *bool `yaml:"include-images"`
	AllAttachments *bool `yaml:"all-attachments"`
	Debug          *bool `yaml:"debug"`
	WithVCR        *bool `yaml:"with-vcr"`

	Output  string `yaml:"output"`
	Format  string `yaml:"format"`
	Workers int    `yaml:"workers"`
}

// Bind each config file entry to its associated cobra flag unless the flag
// was set on the command line, which takes precedence.
func bindFlags(cmd *cobra.Command, v YamlConfig) error {
	for _, field := range structs.Fields(v) {
		key := field.Tag("yaml")
		if key == "" {
			return fmt.Errorf("confluence-export: could not retrieve struct tag 'yaml'")
		}
		if flag := cmd.Flag(key); flag == nil {
			// hmm... the flag is unknown.  but that can legitimately happen if
			// you're running a subcommand that doesn't define this flag even
			// though your YAML file does.
			continue
		}
		if !cmd.Flags().Changed(key) {
			switch field.Kind() {
			case reflect.Ptr:
				// YamlConfig only uses pointers for bools.
				b, ok := field.Value().(*bool)
				if !ok {
					return fmt.Errorf("confluence-export: found unrecognised field: %+v", field)
				}
				if b != nil {
					cmd.Flags().Set(key, fmt.Sprintf("%v", *b))
				}

			case reflect.String:
				s, ok := field.Value().(string)
				if !ok {
					return fmt.Errorf("confluence-export: found unrecognised field: %+v", field)
				}
				if s != "" {
					cmd.Flags().Set(key, s)
				}

			case reflect.Int:
				n, ok := field.Value().(int)
				if !ok {
					return fmt.Errorf("confluence-export: found unrecognised field: %+v", field)
				}
				if n != 0 {
					cmd.Flags().Set(key, strconv.Itoa(n))
				}

			default:
				return fmt.Errorf("confluence-export: found unrecognised field: %+v", field)
			}
		}
	}

	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("confluence-export: execution error: %w", err)
	}

	return nil
}
