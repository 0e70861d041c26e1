package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/theirongolddev/gbdash/internal/server"

	"github.com/spf13/cobra"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workbook over a local JSON/HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default: config server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	opts, err := metricOptions()
	if err != nil {
		return err
	}
	icsOpts, err := appCfg.ICSOptions()
	if err != nil {
		return err
	}
	addr := appCfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	level := slog.LevelInfo
	if flagQuiet {
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	svc := server.New(server.Config{
		Workbook: appCfg.WorkbookPath(),
		Locale:   appCfg.Locale(),
		Year:     appCfg.General.Year,
		Options:  opts,
		ICS:      icsOpts,
		Addr:     addr,
	}, log)

	if !flagQuiet {
		fmt.Printf("  gbdash listening on http://%s\n", addr)
		fmt.Printf("  Workbook: %s\n", appCfg.WorkbookPath())
		fmt.Println("  Stop with Ctrl+C")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
