// File: cmd/config_cmd.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The API key carries no yaml/json name and is never printed.
			cfg := a.cfg
			var out []byte
			var err error
			if asJSON {
				out, err = json.MarshalIndent(cfg, "", "  ")
				out = append(out, '\n')
			} else {
				out, err = yaml.Marshal(cfg)
			}
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of YAML")

	cmd.AddCommand(show)
	return cmd
}
