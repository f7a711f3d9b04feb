package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/studio-ledger/internal/cli"
	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/config"
	"github.com/Veraticus/studio-ledger/internal/engine"
	"github.com/Veraticus/studio-ledger/internal/period"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/service"
	"github.com/Veraticus/studio-ledger/internal/sheets"
	"github.com/Veraticus/studio-ledger/internal/source"
	"github.com/Veraticus/studio-ledger/internal/tui"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [period]",
		Short: "Aggregate a period and write it to the summary sheet",
		Long: `Aggregate bookings and register rows for every day of a period, print the
day report and, after confirmation, write the day columns of the monthly
summary sheet.

Period formats: ` + period.Usage,
		Example: `  studio run 14 10 2025
  studio run 10 2025
  studio run 01-07 10 2025
  studio run 28.09.2025-03.10.2025`,
		RunE: runRun,
	}

	cmd.Flags().String("bookings-dir", "", "directory of per-day booking folders")
	cmd.Flags().String("register", "", "register source (sheets, csv, none)")
	cmd.Flags().Int("workers", 0, "parallel booking workers per day")
	cmd.Flags().Bool("dry-run", false, "print the report without writing")
	cmd.Flags().BoolP("yes", "y", false, "write without asking")
	cmd.Flags().Bool("no-tui", false, "ask on the plain terminal instead of the review screen")

	_ = viper.BindPFlag("bookings.dir", cmd.Flags().Lookup("bookings-dir"))
	_ = viper.BindPFlag("register.source", cmd.Flags().Lookup("register"))
	_ = viper.BindPFlag("engine.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	days, err := resolvePeriod(ctx, args, cmd.InOrStdin(), out)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	assumeYes, _ := cmd.Flags().GetBool("yes")
	noTUI, _ := cmd.Flags().GetBool("no-tui")

	layout, err := cfg.Layout()
	if err != nil {
		return common.NewUserError("Summary layout is invalid", err)
	}

	var api sheets.API
	if cfg.Register.Source == config.RegisterSourceSheets || !dryRun {
		api, err = sheets.NewServiceAPI(ctx, cfg.SheetsConfig())
		if err != nil {
			return common.NewUserError("Could not connect to Google Sheets", err)
		}
	}

	eng, err := buildEngine(cfg, api)
	if err != nil {
		return err
	}

	studio := cfg.Active()
	slog.Info("Processing period", "studio", studio.Name, "studio_id", studio.ID, "days", len(days))
	fmt.Fprintln(out, cli.FormatTitle(studioTitle(studio)))

	progress := cli.NewDayProgress(cmd.ErrOrStderr(), len(days))
	result, err := eng.Run(ctx, days, progress.Callback())
	if err != nil {
		return err
	}

	if err := report.WritePeriod(out, result.Days, result.Totals, layout); err != nil {
		return err
	}
	warnMissingRegisters(out, result)

	if dryRun {
		fmt.Fprintln(out, cli.FormatWarning("Dry run, nothing written."))
		return nil
	}

	writer := sheets.NewSummaryWriter(api, cfg.SheetsConfig(), slog.Default())

	var confirmer engine.Confirmer
	switch {
	case assumeYes:
		confirmer = alwaysYes{}
	case noTUI:
		confirmer = cli.NewConfirmer(cmd.InOrStdin(), out)
	default:
		confirmer = tui.NewReviewer(layout, nil, nil)
	}

	err = engine.Review(ctx, result, confirmer, writer, layout, cfg.SheetsRetry())
	switch {
	case errors.Is(err, common.ErrCancelled):
		fmt.Fprintln(out, "Отменено.")
		return nil
	case err != nil:
		return common.NewUserError("Some days were not written", err)
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Written %d days.", len(result.Days))))
	return nil
}

func buildEngine(cfg *config.Config, api sheets.API) (*engine.Engine, error) {
	classifier, err := cfg.BuildClassifier()
	if err != nil {
		return nil, common.NewUserError("Classifier tables are invalid", err)
	}
	reconciler, err := cfg.BuildReconciler()
	if err != nil {
		return nil, common.NewUserError("Register settings are invalid", err)
	}

	var registers service.RegisterSource
	switch cfg.Register.Source {
	case config.RegisterSourceSheets:
		registers = sheets.NewRegisterReader(api, cfg.Active().RegisterSpreadsheetID, slog.Default())
	case config.RegisterSourceCSV:
		registers = source.NewRegisterCSV(cfg.Register.CSVDir, cfg.CSVComma())
	default:
		registers = noRegister{}
	}

	engCfg := engine.DefaultConfig()
	engCfg.StudioName = cfg.Active().Name
	engCfg.Workers = cfg.Engine.Workers
	engCfg.Retry = cfg.EngineRetry()

	return engine.NewWithConfig(source.NewBookingDir(cfg.Bookings.Dir), registers, classifier, reconciler, engCfg), nil
}

// resolvePeriod parses args or, when none are given, asks for the period.
func resolvePeriod(ctx context.Context, args []string, in io.Reader, out io.Writer) ([]time.Time, error) {
	expr := strings.Join(args, " ")
	if expr == "" {
		fmt.Fprintf(out, "За какое число (формат: %s): ", period.Usage)
		line, err := cli.NewLineReader(in).ReadLine(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read period: %w", err)
		}
		expr = line
	}
	days, err := period.Parse(expr)
	if err != nil {
		return nil, common.NewUserError("Неверный формат периода", err)
	}
	return days, nil
}

func warnMissingRegisters(w io.Writer, result *engine.Result) {
	seen := map[string]bool{}
	for i, st := range result.Stats {
		if !st.RegisterMissing {
			continue
		}
		name := sheets.RegisterSheetName(result.Days[i].Date)
		if seen[name] {
			continue
		}
		seen[name] = true
		fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("Register sheet %q not found, register totals are zero.", name)))
	}
}

type alwaysYes struct{}

func (alwaysYes) Confirm(context.Context, *engine.Result) (bool, error) { return true, nil }

// noRegister contributes no register rows.
type noRegister struct{}

func (noRegister) Table(context.Context, time.Time) ([][]string, error) {
	return [][]string{}, nil
}

// studioTitle names the studio, with its reservation system id when set.
func studioTitle(studio config.Studio) string {
	if studio.ID > 0 {
		return fmt.Sprintf("Studio: %s (reservation id %d)", studio.Name, studio.ID)
	}
	return "Studio: " + studio.Name
}
