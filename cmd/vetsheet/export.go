package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta dueños, mascotas y visitas a XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			b, err := a.Export.XLSX(cmd.Context())
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "records.xlsx", "archivo de salida")
	return cmd
}
