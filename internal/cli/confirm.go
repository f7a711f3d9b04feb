package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/studio-ledger/internal/engine"
)

// ConfirmPrompt is asked before anything is written to the summary sheet.
const ConfirmPrompt = "Внести в таблицу? (yes/no): "

// Confirmer asks the operator on a plain terminal. Only "yes" confirms.
type Confirmer struct {
	reader *LineReader
	writer io.Writer
}

var _ engine.Confirmer = (*Confirmer)(nil)

// NewConfirmer reads answers from r and writes the prompt to w. Nil values
// default to stdin and stdout.
func NewConfirmer(r io.Reader, w io.Writer) *Confirmer {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Confirmer{reader: NewLineReader(r), writer: w}
}

// Confirm prints the prompt and reads one answer.
func (c *Confirmer) Confirm(ctx context.Context, _ *engine.Result) (bool, error) {
	if _, err := fmt.Fprint(c.writer, ConfirmPrompt); err != nil {
		return false, err
	}
	answer, err := c.reader.ReadLine(ctx)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// IsYes reports whether answer is "yes" in any case.
func IsYes(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}
