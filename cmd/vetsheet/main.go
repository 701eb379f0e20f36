// vetsheet es la CLI: parsear fichas, importarlas al store, vigilar un
// directorio, exportar a XLSX, migrar el esquema y empujar a otra instancia.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/app"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/config"
	"github.com/WINTERANDREA/vet-sheet-parser/internal/platform/logger"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "vetsheet:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "vetsheet",
		Short:   "Extrae dueños, mascotas y visitas de fichas clínicas veterinarias",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg
			opts.log = app.NewLogger(cfg)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", os.Getenv("VETSHEET_CONFIG"), "archivo YAML de configuración")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, error (pisa la config)")

	cmd.AddCommand(
		newParseCommand(opts),
		newImportCommand(opts),
		newWatchCommand(opts),
		newExportCommand(opts),
		newMigrateCommand(opts),
		newPushCommand(opts),
	)
	return cmd
}

// openApp arma los servicios; dir no vacío fuerza la fuente a ese directorio.
func (o *rootOptions) openApp(ctx context.Context, dir string) (*app.App, error) {
	cfg := *o.cfg
	if dir != "" {
		cfg.Source.Kind = "fs"
		cfg.Source.Dir = dir
	}
	return app.New(ctx, &cfg, o.log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
