package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/config"
	"github.com/Veraticus/studio-ledger/internal/engine"
	"github.com/Veraticus/studio-ledger/internal/ledger"
	"github.com/Veraticus/studio-ledger/internal/model"
)

func TestResolvePeriod(t *testing.T) {
	t.Run("from args", func(t *testing.T) {
		days, err := resolvePeriod(context.Background(), []string{"01-03", "10", "2025"}, strings.NewReader(""), &bytes.Buffer{})
		require.NoError(t, err)
		assert.Len(t, days, 3)
	})

	t.Run("prompted", func(t *testing.T) {
		var out bytes.Buffer
		days, err := resolvePeriod(context.Background(), nil, strings.NewReader("10 2025\n"), &out)
		require.NoError(t, err)
		assert.Len(t, days, 31)
		assert.Contains(t, out.String(), "За какое число")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := resolvePeriod(context.Background(), []string{"yesterday"}, strings.NewReader(""), &bytes.Buffer{})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidPeriod)
		var ue *common.UserError
		assert.ErrorAs(t, err, &ue)
	})
}

func TestBuildEngine_FileSources(t *testing.T) {
	root := t.TempDir()
	bookings := filepath.Join(root, "bookings")
	registers := filepath.Join(root, "register")
	require.NoError(t, os.MkdirAll(filepath.Join(bookings, "2025-10-05"), 0o750))
	require.NoError(t, os.MkdirAll(registers, 0o750))

	booking := "Хохловка\nДата: 5 октября 2025\nс 10:00 до 13:00\nКол-во часов: 3\nФотосъемка\nИтого оплачено: 4 500 руб."
	require.NoError(t, os.WriteFile(filepath.Join(bookings, "2025-10-05", "1.txt"), []byte(booking), 0o600))
	csv := "Дата;Сумма;;;Описание;;Аналитика\n05.10.2025;р.3000;;;Выручка Хохловка;;Фото\n"
	require.NoError(t, os.WriteFile(filepath.Join(registers, "октябрь 2025.csv"), []byte(csv), 0o600))

	v := viper.New()
	config.SetDefaults(v)
	v.Set("bookings.dir", bookings)
	v.Set("register.source", config.RegisterSourceCSV)
	v.Set("register.csv_dir", registers)
	v.Set("register.comma", ";")
	v.Set("engine.retry_delay", "1ms")
	cfg, err := config.Load(v)
	require.NoError(t, err)

	eng, err := buildEngine(cfg, nil)
	require.NoError(t, err)

	day := time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC)
	result, err := eng.Run(context.Background(), []time.Time{day, day.AddDate(0, 0, 1)}, nil)
	require.NoError(t, err)

	require.Len(t, result.Days, 2)
	assert.InDelta(t, 3.0, result.Days[0].HoursFor(model.CategoryPhoto), 1e-9)
	assert.Equal(t, 4500, result.Days[0].PrepayPhoto)
	assert.Equal(t, 3000, result.Days[0].FactPhoto)
	assert.Zero(t, result.Days[1].HoursFor(model.CategoryPhoto))

	writer := engine.NewMockCellWriter()
	layout, err := cfg.Layout()
	require.NoError(t, err)
	require.NoError(t, engine.Review(context.Background(), result, alwaysYes{}, writer, layout, cfg.SheetsRetry()))
	assert.Len(t, writer.Written, 2)
}

func TestBuildEngine_NoRegister(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("bookings.dir", t.TempDir())
	v.Set("register.source", config.RegisterSourceNone)
	cfg, err := config.Load(v)
	require.NoError(t, err)

	eng, err := buildEngine(cfg, nil)
	require.NoError(t, err)

	result, err := eng.Run(context.Background(), []time.Time{time.Date(2025, time.October, 5, 0, 0, 0, 0, time.UTC)}, nil)
	require.NoError(t, err)
	assert.False(t, result.Stats[0].RegisterMissing)

	var out bytes.Buffer
	warnMissingRegisters(&out, result)
	assert.Empty(t, out.String())
}

func TestWarnMissingRegisters(t *testing.T) {
	oct := time.Date(2025, time.October, 30, 0, 0, 0, 0, time.UTC)
	days := []time.Time{oct, oct.AddDate(0, 0, 1), oct.AddDate(0, 0, 2)}

	result := &engine.Result{}
	for _, d := range days {
		result.Days = append(result.Days, ledger.NewDay(d).Snapshot())
		result.Stats = append(result.Stats, engine.DayStats{RegisterMissing: true})
	}

	var out bytes.Buffer
	warnMissingRegisters(&out, result)

	assert.Equal(t, 1, strings.Count(out.String(), `"октябрь 2025"`))
	assert.Equal(t, 1, strings.Count(out.String(), `"ноябрь 2025"`))
}

func TestStudioTitle(t *testing.T) {
	tests := []struct {
		name   string
		studio config.Studio
		want   string
	}{
		{name: "with reservation id", studio: config.Studio{Name: "Хохловка", ID: 21}, want: "Studio: Хохловка (reservation id 21)"},
		{name: "without id", studio: config.Studio{Name: "Яуза"}, want: "Studio: Яуза"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, studioTitle(tt.studio))
		})
	}
}
