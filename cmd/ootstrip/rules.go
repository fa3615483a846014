package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/walteh/ootstrip/pkg/strip"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// newRulesCmd creates the rules command
func newRulesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rewrite rules in the order they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			rules := strip.Rules()

			switch output {
			case "yaml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(rules); err != nil {
					return errors.Errorf("encoding rules as yaml: %w", err)
				}
				if err := enc.Close(); err != nil {
					return errors.Errorf("flushing yaml: %w", err)
				}
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rules); err != nil {
					return errors.Errorf("encoding rules as json: %w", err)
				}
			default:
				return errors.Errorf("unsupported output %q (want yaml or json)", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")

	return cmd
}
