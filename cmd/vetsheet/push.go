package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/records"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/httpclient"
)

func newPushCommand(opts *rootOptions) *cobra.Command {
	var (
		api     string
		timeout time.Duration
		retries int
	)

	cmd := &cobra.Command{
		Use:   "push FILE",
		Short: "Parsea una ficha local y la guarda en un API remoto (POST /records)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := parseFile(cmd, opts, args[0], false)
			if err != nil {
				return err
			}

			client, err := httpclient.New(api,
				httpclient.WithTimeout(timeout),
				httpclient.WithRetries(retries, 500*time.Millisecond),
				httpclient.WithLogger(opts.log),
			)
			if err != nil {
				return err
			}

			var saved records.SaveResult
			if err := client.DoJSON(cmd.Context(), http.MethodPost, "/records", nil, res.Document, &saved); err != nil {
				return fmt.Errorf("push %s: %w", res.Name, err)
			}
			return printJSON(cmd.OutOrStdout(), saved)
		},
	}
	cmd.Flags().StringVar(&api, "api", "http://localhost:8080", "URL base del API")
	cmd.Flags().DurationVar(&timeout, "timeout", httpclient.DefaultTimeout, "timeout por request")
	cmd.Flags().IntVar(&retries, "retries", 2, "reintentos ante 502/503/504 o errores de red")
	return cmd
}
