package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var (
		dir    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa todas las fichas de la fuente al store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.openApp(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.Importer.ImportAll(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}

			out := cmd.OutOrStdout()
			for _, f := range rep.Files {
				if f.Err != "" {
					fmt.Fprintf(out, "FAIL  %s: %s\n", f.Name, f.Err)
					continue
				}
				fmt.Fprintf(out, "OK    %s (owners=%d pets=%d visits=%d)\n", f.Name, len(f.OwnerIDs), len(f.PetIDs), f.Visits)
			}
			fmt.Fprintf(out, "matched=%d succeeded=%d failed=%d\n", rep.Stats.Matched, rep.Stats.Succeeded, rep.Stats.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directorio de fichas (pisa source.*)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "reporte en JSON")
	return cmd
}
