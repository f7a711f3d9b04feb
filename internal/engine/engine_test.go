package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/studio-ledger/internal/classification"
	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/register"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/service"
)

const studio = "Хохловка"

var oct5 = time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC)

const photoBooking = `Хохловка
Дата: 5 октября 2025
с 10:00 до 13:00
Кол-во часов: 3
Фотосъемка
Итого оплачено: 4 500 руб.`

func fastRetry() service.RetryOptions {
	return service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func octoberRegister() [][]string {
	return [][]string{
		{"Дата", "Сумма", "", "", "Описание", "", "Аналитика"},
		{"05.10.2025", "р.3000", "", "", "Выручка Хохловка", "", "Фото"},
		{"05.10.2025", "р.500", "", "", "Парковка Хохловка"},
		{"05.10.2025", "р.800", "", "", "Выручка Яуза", "", "Фото"},
		{"06.10.2025", "р.1200", "", "", "Выручка Хохловка", "", "Видео"},
	}
}

func newTestEngine(t *testing.T, bookings *MockBookingSource, registers *MockRegisterSource, workers int) *Engine {
	t.Helper()
	rec, err := register.New(register.DefaultOptions("хохловка"))
	require.NoError(t, err)
	return NewWithConfig(bookings, registers, classification.NewDefault(), rec, Config{
		StudioName: studio,
		Retry:      fastRetry(),
		Workers:    workers,
	})
}

func TestEngine_ProcessDay(t *testing.T) {
	bookings := NewMockBookingSource()
	bookings.Add(oct5,
		photoBooking,
		"Яуза\nФотосъемка с 10:00 до 12:00",
		"Хохловка\nс 10:00 до 11:00\nчто-то непонятное",
		"Хохловка Не приехали с 15:00 до 16:00",
	)
	registers := NewMockRegisterSource()
	registers.Set(oct5, octoberRegister())

	e := newTestEngine(t, bookings, registers, 1)
	snap, stats, err := e.ProcessDay(context.Background(), oct5)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, snap.HoursFor(model.CategoryPhoto), 1e-9)
	assert.Equal(t, 1, snap.CountFor(model.CategoryPhoto))
	assert.InDelta(t, 1.0, snap.HoursFor(model.CategoryUnknown), 1e-9)
	assert.InDelta(t, 1.0, snap.HoursFor(model.CategoryNoShow), 1e-9)
	assert.Equal(t, 4500, snap.PrepayPhoto)
	assert.Equal(t, 3000, snap.FactPhoto)
	assert.Equal(t, 500, snap.FactAncillary)
	assert.Equal(t, 500, snap.ParkingAmount)
	assert.Equal(t, 1, snap.ParkingCount)

	assert.Equal(t, 3, stats.Bookings)
	assert.Equal(t, 1, stats.ForeignBookings)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, 2, stats.RegisterRows)
	assert.Equal(t, 1, stats.RegisterRejected.ForeignStudio)
	assert.False(t, stats.RegisterMissing)
}

func TestEngine_Record(t *testing.T) {
	e := newTestEngine(t, NewMockBookingSource(), NewMockRegisterSource(), 1)

	tests := []struct {
		name     string
		text     string
		wantCat  model.Category
		wantDay  float64
		wantFull float64
		wantOK   bool
	}{
		{
			name:     "photo booking",
			text:     photoBooking,
			wantCat:  model.CategoryPhoto,
			wantDay:  3,
			wantFull: 3,
			wantOK:   true,
		},
		{
			name:     "overnight banquet",
			text:     "Хохловка\nДата: 5 октября 2025\nс 22:00 до 02:00\nБанкет",
			wantCat:  model.CategoryBanquet,
			wantDay:  2,
			wantFull: 4,
			wantOK:   true,
		},
		{
			name:     "declared hours only",
			text:     "Хохловка\nКол-во часов: 2\nВидео съемки/Мастер класс",
			wantCat:  model.CategoryVideoMaster,
			wantDay:  2,
			wantFull: 2,
			wantOK:   true,
		},
		{
			name: "studio name is case sensitive",
			text: "хохловка\nФотосъемка",
		},
		{
			name: "other studio",
			text: "Яуза\nФотосъемка",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := e.Record(model.BookingText(tt.text), oct5)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantCat, rec.Category)
			assert.InDelta(t, tt.wantDay, rec.HoursInDay, 1e-9)
			assert.InDelta(t, tt.wantFull, rec.FullDurationHours, 1e-9)
		})
	}
}

func TestEngine_RecordWithoutStudioName(t *testing.T) {
	rec, err := register.New(register.DefaultOptions("хохловка"))
	require.NoError(t, err)
	e := New(NewMockBookingSource(), NewMockRegisterSource(), classification.NewDefault(), rec)

	got, ok := e.Record("Яуза\nФотосъемка", oct5)
	assert.True(t, ok)
	assert.Equal(t, model.CategoryPhoto, got.Category)
}

func TestEngine_Run(t *testing.T) {
	bookings := NewMockBookingSource()
	bookings.Add(oct5, photoBooking)
	bookings.Add(oct5.AddDate(0, 0, 1), "Хохловка\nс 12:00 до 14:00\nФотосъемка")
	registers := NewMockRegisterSource()
	registers.Set(oct5, octoberRegister())

	e := newTestEngine(t, bookings, registers, 2)
	days := []time.Time{oct5, oct5.AddDate(0, 0, 1), oct5.AddDate(0, 0, 2)}

	var progress []int
	result, err := e.Run(context.Background(), days, func(done, total int, _ time.Time) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.True(t, result.Range.Start.Equal(days[0]))
	assert.True(t, result.Range.End.Equal(days[2]))
	require.Len(t, result.Days, 3)
	require.Len(t, result.Stats, 3)
	assert.Equal(t, []int{1, 2, 3}, progress)

	assert.Equal(t, 1200, result.Days[1].FactVideo)
	assert.InDelta(t, 5.0, result.Totals.Hours(model.CategoryPhoto), 1e-9)
	assert.Equal(t, 2, result.Totals.Count(model.CategoryPhoto))
	assert.Equal(t, 3, result.Totals.Days())

	assert.Equal(t, 1, registers.Calls(), "register month is loaded once")
	assert.Equal(t, 3, bookings.Calls())
}

func TestEngine_RunMissingRegisterMonth(t *testing.T) {
	bookings := NewMockBookingSource()
	registers := NewMockRegisterSource()
	nov1 := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)

	e := newTestEngine(t, bookings, registers, 1)
	result, err := e.Run(context.Background(), []time.Time{nov1, nov1.AddDate(0, 0, 1)}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, registers.Calls())
	for _, s := range result.Stats {
		assert.True(t, s.RegisterMissing)
		assert.Zero(t, s.RegisterRows)
	}
	assert.Zero(t, result.Days[0].FactPhoto)
}

func TestEngine_RunErrors(t *testing.T) {
	t.Run("booking source failure", func(t *testing.T) {
		bookings := NewMockBookingSource()
		bookings.Err = errors.New("disk gone")

		e := newTestEngine(t, bookings, NewMockRegisterSource(), 1)
		_, err := e.Run(context.Background(), []time.Time{oct5}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "05.10.2025")
		assert.Contains(t, err.Error(), "disk gone")
		assert.Equal(t, 2, bookings.Calls())
	})

	t.Run("register source failure", func(t *testing.T) {
		registers := NewMockRegisterSource()
		registers.Err = common.Permanent(errors.New("forbidden"))

		e := newTestEngine(t, NewMockBookingSource(), registers, 1)
		_, err := e.Run(context.Background(), []time.Time{oct5}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load register for 2025-10")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := newTestEngine(t, NewMockBookingSource(), NewMockRegisterSource(), 1)
		_, err := e.Run(ctx, []time.Time{oct5}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEngine_WorkerCountDoesNotChangeResult(t *testing.T) {
	build := func(workers int) *Result {
		bookings := NewMockBookingSource()
		for i := 0; i < 40; i++ {
			switch i % 4 {
			case 0:
				bookings.Add(oct5, photoBooking)
			case 1:
				bookings.Add(oct5, fmt.Sprintf("Хохловка\nс %02d:00 до %02d:30\nБанкет", i%20, i%20+1))
			case 2:
				bookings.Add(oct5, "Хохловка\nКол-во часов: 1\nфотошкола занятия")
			default:
				bookings.Add(oct5, "Яуза\nФотосъемка")
			}
		}
		registers := NewMockRegisterSource()
		registers.Set(oct5, octoberRegister())

		result, err := newTestEngine(t, bookings, registers, workers).Run(context.Background(), []time.Time{oct5}, nil)
		require.NoError(t, err)
		return result
	}

	serial := build(1)
	parallel := build(8)

	assert.Equal(t, serial.Days, parallel.Days)
	assert.Equal(t, serial.Stats, parallel.Stats)
	assert.Equal(t, 10, serial.Stats[0].ForeignBookings)
	assert.Equal(t, 6000, serial.Days[0].SchoolRevenue)
}

func TestPublish(t *testing.T) {
	result := &Result{RunID: "run"}
	for i := 0; i < 3; i++ {
		result.Days = append(result.Days, ledgerDay(oct5.AddDate(0, 0, i)))
	}

	t.Run("all days written", func(t *testing.T) {
		writer := NewMockCellWriter()
		err := Publish(context.Background(), result, writer, report.DefaultLayout(), fastRetry())
		require.NoError(t, err)

		require.Len(t, writer.Written, 3)
		cells := writer.Written["2025-10-05"]
		require.NotEmpty(t, cells)
		assert.Equal(t, "F5", cells[0].Ref())
		assert.Equal(t, 4500, cells[0].Value)
	})

	t.Run("failed day does not stop others", func(t *testing.T) {
		writer := NewMockCellWriter()
		writer.FailDays["2025-10-06"] = common.Permanent(errors.New("protected range"))

		err := Publish(context.Background(), result, writer, report.DefaultLayout(), fastRetry())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "day 06.10.2025")
		assert.Contains(t, err.Error(), "protected range")
		assert.Len(t, writer.Written, 2)
	})

	t.Run("rate limit is retried then reported", func(t *testing.T) {
		writer := NewMockCellWriter()
		writer.FailDays["2025-10-07"] = common.ErrRateLimit

		err := Publish(context.Background(), result, writer, report.DefaultLayout(), fastRetry())
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrRateLimit)
		assert.ErrorIs(t, err, common.ErrMaxRetries)
	})
}

func TestReview(t *testing.T) {
	result := &Result{RunID: "run", Days: nil}
	result.Days = append(result.Days, ledgerDay(oct5))

	tests := []struct {
		name        string
		confirmer   *MockConfirmer
		wantErr     error
		wantErrText string
		wantWritten int
	}{
		{name: "confirmed", confirmer: &MockConfirmer{Answer: true}, wantWritten: 1},
		{name: "declined", confirmer: &MockConfirmer{Answer: false}, wantErr: common.ErrCancelled},
		{name: "confirmer failed", confirmer: &MockConfirmer{Err: errors.New("tty closed")}, wantErrText: "confirmation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := NewMockCellWriter()
			err := Review(context.Background(), result, tt.confirmer, writer, report.DefaultLayout(), fastRetry())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
			default:
				require.NoError(t, err)
			}
			assert.Same(t, result, tt.confirmer.Seen)
			assert.Len(t, writer.Written, tt.wantWritten)
		})
	}
}
