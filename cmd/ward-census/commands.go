package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ward-census/internal/client"
	"ward-census/internal/config"
	httpapi "ward-census/internal/http"
	"ward-census/internal/importer"
	"ward-census/internal/logger"
	"ward-census/internal/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				router := httpapi.NewRouter(a.logger)
				router.RegisterHealthRoutes(httpapi.NewHealthHandler(a.store, a.storeName, a.redisClient, a.logger))
				router.RegisterInpatientRoutes(httpapi.NewInpatientHandler(a.occupancy, a.logger))
				router.RegisterImportRoutes(httpapi.NewImportHandler(a.imports, a.cfg.Import.MaxUploadBytes, a.logger))
				router.RegisterPatientRoutes(httpapi.NewPatientsHandler(a.patients, a.cleanup, a.logger))
				router.RegisterSettingsRoutes(httpapi.NewSettingsHandler(a.settings, a.logger))

				srv := service.NewServer(a.cfg.HTTP.Addr, router, a.logger)

				errCh := make(chan error, 1)
				go func() {
					errCh <- srv.Start()
				}()

				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(sigCh)

				var serveErr error
				select {
				case sig := <-sigCh:
					a.logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
				case err := <-errCh:
					if !errors.Is(err, http.ErrServerClosed) {
						serveErr = err
					}
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Stop(shutdownCtx); err != nil {
					a.logger.Warn("Graceful shutdown failed", zap.Error(err))
				}
				return serveErr
			})
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import an admission journal (.xlsx) into the record store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sheet, err := importer.ReadSheetFile(args[0], a.cfg.Import.SheetName)
				if err != nil {
					return err
				}
				report, err := a.imports.ImportSheet(ctx, sheet, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, report.Message)
				for _, u := range report.Unresolved {
					fmt.Fprintf(out, "  row %d: unknown %s %q\n", u.Row, u.Field, u.Text)
				}
				if a.db == nil {
					fmt.Fprintln(out, "note: DB_ENABLED is off, nothing was persisted")
				}
				return nil
			})
		},
	}
}

func snapshotCmd() *cobra.Command {
	var at, remote, outFile string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show who occupies each ward at a point in time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				return remoteSnapshot(cmd, remote, at, outFile)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				view, err := a.occupancy.Snapshot(ctx, at)
				if err != nil {
					return err
				}
				if outFile != "" {
					data, err := httpapi.GenerateInpatientExport(view)
					if err != nil {
						return err
					}
					return writeOut(cmd.OutOrStdout(), outFile, data)
				}
				printSnapshot(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `Reference instant "dd.mm.yyyy HH:MM" (default: now)`)
	cmd.Flags().StringVar(&remote, "remote", "", "Base URL of a running ward-census server")
	cmd.Flags().StringVar(&outFile, "out", "", "Write an .xlsx export instead of printing")
	return cmd
}

func remoteSnapshot(cmd *cobra.Command, baseURL, at, outFile string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "ward-census")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c := client.NewCensusClient(baseURL, log)
	if outFile != "" {
		data, err := c.ExportSnapshot(ctx, at)
		if err != nil {
			return err
		}
		return writeOut(cmd.OutOrStdout(), outFile, data)
	}
	view, err := c.Snapshot(ctx, at)
	if err != nil {
		return err
	}
	printSnapshot(cmd.OutOrStdout(), view)
	return nil
}

func writeOut(out io.Writer, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}

// printSnapshot renders the view as plain text, one line per occupant.
func printSnapshot(out io.Writer, view *service.SnapshotView) {
	fmt.Fprintf(out, "Inpatients at %s: %d patients, %d caregivers\n", view.At, view.Patients, view.Caregivers)
	for _, b := range view.Blocks {
		fmt.Fprintf(out, "\n%s\n", b.Title)
		for _, w := range b.Wards {
			lines := strings.Split(w.Text, "\n")
			fmt.Fprintf(out, "  %-10s %s\n", w.Name, lines[0])
			for _, l := range lines[1:] {
				fmt.Fprintf(out, "  %-10s %s\n", "", l)
			}
		}
	}
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "List records that miss mandatory fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				items, err := a.cleanup.ListInvalid(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No patients with missing required fields.")
					return nil
				}
				for _, it := range items {
					fmt.Fprintf(out, "%s\t%s\t%s\tmissing: %s\n",
						it.RecordID, it.HistoryNumber, it.FullName, strings.Join(it.MissingLabels, ", "))
				}
				fmt.Fprintf(out, "%d incomplete records\n", len(items))
				return nil
			})
		},
	}
}

func templateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template OUT",
		Short: "Write the blank import workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := importer.GenerateTemplate()
			if err != nil {
				return err
			}
			return writeOut(cmd.OutOrStdout(), args[0], data)
		},
	}
}

func clearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every admission record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all records without --yes")
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				n, err := a.patients.ClearAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d patients\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
