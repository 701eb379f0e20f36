package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
)

func newParseCommand(opts *rootOptions) *cobra.Command {
	var keepRaw bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parsea una ficha local e imprime el JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := parseFile(cmd, opts, args[0], keepRaw)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&keepRaw, "raw", false, "incluir el texto original")
	return cmd
}

// parseFile no necesita storage ni fuente: decodifica y parsea en memoria.
func parseFile(cmd *cobra.Command, opts *rootOptions, path string, keepRaw bool) (documents.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return documents.Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	svc := documents.NewService(nil, documents.WithLogger(opts.log))
	return svc.ParseBytes(cmd.Context(), filepath.Base(path), b, keepRaw)
}
