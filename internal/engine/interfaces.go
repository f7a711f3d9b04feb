package engine

import (
	"context"

	"github.com/Veraticus/studio-ledger/internal/model"
)

// Classifier defines the contract for booking categorization.
type Classifier interface {
	ClassifyFields(fields model.ExtractedFields, text model.BookingText) model.Category
}

// Confirmer decides whether a finished run is written to the summary sheet.
type Confirmer interface {
	Confirm(ctx context.Context, result *Result) (bool, error)
}
