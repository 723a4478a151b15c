package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/internal/service"
	"github.com/noah-isme/sma-hod-api/pkg/export"
	"github.com/noah-isme/sma-hod-api/pkg/schoolapi"
)

// manualTicker fires only when the simulation pushes a tick.
type manualTicker struct {
	ch chan time.Time
}

func (t *manualTicker) Chan() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()                  {}

func simulateCmd(flags *globalFlags) *cobra.Command {
	var (
		ticks    int
		seed     int64
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run badge refresh ticks against the seed data and print each count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ticks < 0 {
				return fmt.Errorf("ticks must be >= 0, got %d", ticks)
			}
			params := service.DepartmentStoreParams{
				DepartmentCode: flags.department,
				Stepper:        service.NewRandomBadgeStepper(seed),
				Config:         service.DepartmentStoreConfig{TickInterval: interval},
			}
			var manual *manualTicker
			if interval <= 0 {
				manual = &manualTicker{ch: make(chan time.Time)}
				params.NewTicker = func(time.Duration) service.Ticker { return manual }
			}
			store := service.NewDepartmentStore(params)
			updates, cancel := store.SubscribeBadges()
			defer cancel()

			if err := store.Start(cmd.Context()); err != nil {
				return err
			}
			defer store.Stop()

			out := cmd.OutOrStdout()
			printBadges(out, 0, store.BadgeCounts())
			for i := 1; i <= ticks; i++ {
				if manual != nil {
					manual.ch <- time.Now()
				}
				select {
				case badges, ok := <-updates:
					if !ok {
						return nil
					}
					printBadges(out, i, badges)
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 10, "number of ticks to run")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random step seed (0 picks a time based seed)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "wall-clock tick interval (0 ticks immediately)")
	return cmd
}

func printBadges(w io.Writer, tick int, b models.BadgeCounts) {
	fmt.Fprintf(w, "tick=%d department=%d resources=%d reports=%d\n", tick, b.Department, b.Resources, b.Reports)
}

func reportCmd(flags *globalFlags) *cobra.Command {
	var (
		format  string
		outDir  string
		fromAPI bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the department report as csv, pdf or xlsx",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			params := service.DepartmentStoreParams{DepartmentCode: flags.department}
			if fromAPI {
				apiCfg, err := flags.schoolAPIConfig()
				if err != nil {
					return err
				}
				params.Loader = schoolapi.New(apiCfg)
			}
			store := service.NewDepartmentStore(params)
			if fromAPI {
				result := store.RefreshDepartmentData(cmd.Context())
				if result.Provenance != models.ProvenanceLive {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: serving %s data: %s\n", result.Provenance, result.Error)
				}
			}

			file, err := service.NewReportService().DepartmentReport(store, f)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, file.Filename)
			if err := os.WriteFile(path, file.Content, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, pdf or xlsx")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&fromAPI, "api", false, "load department data from the school API first")
	return cmd
}

func snapshotCmd(flags *globalFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch the department dashboard from the school API and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiCfg, err := flags.schoolAPIConfig()
			if err != nil {
				return err
			}
			client := schoolapi.New(apiCfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			snap, err := client.LoadDepartment(ctx, flags.department)
			if err != nil {
				return err
			}
			if !models.RanksArePermutation(snap.Teachers) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: department ranks are not a permutation of 1..N")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}
