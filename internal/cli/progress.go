package cli

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/studio-ledger/internal/engine"
	"github.com/Veraticus/studio-ledger/internal/register"
)

// DayProgress renders a progress bar that advances once per processed day.
type DayProgress struct {
	bar *progressbar.ProgressBar
}

// NewDayProgress creates a bar for total days on w.
func NewDayProgress(w io.Writer, total int) *DayProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Processing days...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &DayProgress{bar: bar}
}

// Callback adapts the bar to the engine progress hook.
func (p *DayProgress) Callback() engine.Progress {
	return func(done, _ int, day time.Time) {
		p.bar.Describe(fmt.Sprintf("[cyan][bold]Day %s[reset]", day.Format(register.DateLayout)))
		if err := p.bar.Set(done); err != nil {
			slog.Debug("Progress bar update failed", "error", err)
		}
	}
}
