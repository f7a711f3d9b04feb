package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/studio-ledger/internal/period"
	"github.com/Veraticus/studio-ledger/internal/register"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/sheets"
)

func daysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "days <period>",
		Short: "List the days of a period with their sheet and column",
		Long:  "Expand a period expression. Formats: " + period.Usage,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := period.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range days {
				fmt.Fprintf(out, "%s\t%s!%s\t%s\n",
					d.Format(register.DateLayout),
					sheets.SummarySheetName(d),
					report.DayColumn(d.Day()),
					sheets.RegisterSheetName(d))
			}
			return nil
		},
	}
}
