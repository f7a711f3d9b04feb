package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/studio-ledger/internal/classification"
	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/extract"
	"github.com/Veraticus/studio-ledger/internal/interval"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/period"
	"github.com/Veraticus/studio-ledger/internal/register"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file...]",
		Short: "Explain how booking texts are classified",
		Long: `Read booking texts from files (or stdin when none are given) and print
the extracted fields, the category with the rule that decided it, and the
hours that fall inside the given day.`,
		RunE: runClassify,
	}
	cmd.Flags().String("day", "", "processing day as dd mm yyyy (default: booking date or today)")
	cmd.Flags().Bool("rules", false, "print the rule chain in evaluation order first")
	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	classifier, err := cfg.BuildClassifier()
	if err != nil {
		return common.NewUserError("Classifier tables are invalid", err)
	}

	var day *time.Time
	if expr, _ := cmd.Flags().GetString("day"); expr != "" {
		days, err := period.Parse(expr)
		if err != nil || len(days) != 1 {
			return common.NewUserError("--day must be a single day (dd mm yyyy)", err)
		}
		day = &days[0]
	}

	out := cmd.OutOrStdout()
	if showRules, _ := cmd.Flags().GetBool("rules"); showRules {
		printRules(out, classifier)
	}
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		explain(out, classifier, "stdin", model.BookingText(data), day)
		return nil
	}
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		explain(out, classifier, path, model.BookingText(data), day)
	}
	return nil
}

func printRules(w io.Writer, c *classification.Classifier) {
	fmt.Fprintln(w, "rules:")
	for i, name := range c.RuleNames() {
		fmt.Fprintf(w, "  %d. %s\n", i+1, name)
	}
}

func explain(w io.Writer, c *classification.Classifier, name string, text model.BookingText, day *time.Time) {
	fields := extract.Fields(text)
	hint := ""
	if fields.HintLine != nil {
		hint = *fields.HintLine
	}
	match := c.Explain(text, hint)
	cat := classification.ApplyNoShowOverride(match.Category, text)
	rule := match.Rule
	if cat != match.Category {
		rule = "no-show override"
	}

	on := time.Now().UTC()
	switch {
	case day != nil:
		on = *day
	case fields.BookingDate != nil:
		on = *fields.BookingDate
	}
	span := interval.Compute(fields, on)

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  category: %s (%s) by %s\n", cat, cat.Label(), rule)
	if fields.HasTimeRange() {
		fmt.Fprintf(w, "  time: %s-%s\n", fields.Start, fields.End)
	}
	if fields.DeclaredHours != nil {
		fmt.Fprintf(w, "  declared hours: %d\n", *fields.DeclaredHours)
	}
	if fields.BookingDate != nil {
		fmt.Fprintf(w, "  booking date: %s\n", fields.BookingDate.Format(register.DateLayout))
	}
	fmt.Fprintf(w, "  prepaid: %d руб.\n", fields.PrepaidAmount)
	fmt.Fprintf(w, "  hours on %s: %v (full: %v)\n", on.Format(register.DateLayout), span.HoursInDay, span.FullDurationHours)
}
