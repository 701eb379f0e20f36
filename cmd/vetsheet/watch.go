package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/ingest"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var (
		dir     string
		initial bool
		cfg     ingest.WatchConfig
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Importa las fichas .txt que aparecen o cambian en un directorio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = opts.cfg.Source.Dir
			}
			a, err := opts.openApp(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			cfg.Dir = dir
			cfg.InitialScan = initial
			cfg.OnResult = func(r ingest.FileResult) {
				if r.Err != "" {
					fmt.Fprintf(out, "FAIL  %s: %s\n", r.Name, r.Err)
					return
				}
				fmt.Fprintf(out, "OK    %s (visits=%d)\n", r.Name, r.Visits)
			}
			return a.Importer.Watch(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directorio a vigilar (default source.dir)")
	cmd.Flags().BoolVar(&initial, "initial", true, "importar primero lo que ya existe")
	cmd.Flags().DurationVar(&cfg.Debounce, "debounce", ingest.DefaultDebounce, "ventana para agrupar escrituras")
	return cmd
}
