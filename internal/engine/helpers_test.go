package engine

import (
	"time"

	"github.com/Veraticus/studio-ledger/internal/ledger"
	"github.com/Veraticus/studio-ledger/internal/model"
)

func ledgerDay(day time.Time) ledger.Snapshot {
	return ledger.NewDay(day).
		AddBooking(model.BookingRecord{Category: model.CategoryPhoto, HoursInDay: 3, PrepaidAmount: 4500}).
		Snapshot()
}
