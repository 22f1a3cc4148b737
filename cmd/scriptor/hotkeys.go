package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scriptorhq/scriptor/pkg/hotkeys"
)

func newHotkeysCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "hotkeys",
		Short: "Print the configured global hotkey bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := hotkeys.DefaultBindings()
			m := hotkeys.Map(bindings)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}
			for _, b := range bindings {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s\n", b.Action, m[string(b.Action)])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print bindings as JSON instead of a table")
	return cmd
}
