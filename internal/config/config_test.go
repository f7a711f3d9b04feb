package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/report"
)

func load(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, "hohlovka", cfg.Studio)
	assert.Equal(t, "Хохловка", cfg.Active().Name)
	assert.Equal(t, 21, cfg.Active().ID)
	assert.Equal(t, []string{"hohlovka", "yauza"}, cfg.StudioKeys())
	assert.Equal(t, "./bookings", cfg.Bookings.Dir)
	assert.Equal(t, RegisterSourceSheets, cfg.Register.Source)
	assert.Equal(t, ',', cfg.CSVComma())
	assert.Equal(t, 1, cfg.Engine.Workers)
	assert.Equal(t, time.Second, cfg.Engine.RetryDelay)
	assert.Equal(t, 2*time.Second, cfg.Sheets.RetryDelay)

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, report.DefaultLayout(), layout)
}

func TestLoad_File(t *testing.T) {
	cfg, err := load(t, `
studio: Yauza
studios:
  yauza:
    id: 32
    name: Яуза
    register_token: яуза
    summary_spreadsheet_id: sum-32
    layout:
      financial:
        school: 14
      hours:
        photo: 70
register:
  source: csv
  csv_dir: /data/register
  comma: ";"
engine:
  workers: 4
  retry_attempts: 5
  retry_delay: 250ms
classifier:
  keywords:
    - key: тех.бронь
      category: tech
    - key: съемка
      category: Photo
`)
	require.NoError(t, err)

	assert.Equal(t, "yauza", cfg.Studio)
	assert.Equal(t, "sum-32", cfg.Active().SummarySpreadsheetID)
	assert.Equal(t, ';', cfg.CSVComma())
	assert.Equal(t, "/data/register", cfg.Register.CSVDir)

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, 14, layout.Financial[report.FieldSchool])
	assert.Equal(t, 70, layout.Hours[model.CategoryPhoto])

	keywords, err := cfg.Keywords()
	require.NoError(t, err)
	require.Len(t, keywords, 2)
	assert.Equal(t, "тех.бронь", keywords[0].Key)
	assert.Equal(t, model.CategoryTech, keywords[0].Category)
	assert.Equal(t, model.CategoryPhoto, keywords[1].Category)

	retry := cfg.EngineRetry()
	assert.Equal(t, 5, retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, retry.InitialDelay)
	assert.Equal(t, 2500*time.Millisecond, retry.MaxDelay)

	c, err := cfg.BuildClassifier()
	require.NoError(t, err)
	assert.Equal(t, model.CategoryTech, c.Classify("ТЕХ.БРОНЬ"))

	_, err = cfg.BuildReconciler()
	require.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "unknown studio",
			yaml:   "studio: nowhere",
			errMsg: `studio "nowhere" has no profile`,
		},
		{
			name:   "bad log level",
			yaml:   "logging:\n  level: loud",
			errMsg: "oneof",
		},
		{
			name:   "csv without dir",
			yaml:   "register:\n  source: csv",
			errMsg: "required_if",
		},
		{
			name:   "unknown register source",
			yaml:   "register:\n  source: ftp",
			errMsg: "oneof",
		},
		{
			name:   "zero workers",
			yaml:   "engine:\n  workers: 0",
			errMsg: "gte",
		},
		{
			name:   "long comma",
			yaml:   "register:\n  comma: ';;'",
			errMsg: "len",
		},
		{
			name: "layout collision",
			yaml: `
studios:
  hohlovka:
    name: Хохловка
    register_token: хохловка
    layout:
      hours:
        banquet: 5
`,
			errMsg: "already used",
		},
		{
			name: "keyword with unknown category",
			yaml: `
classifier:
  keywords:
    - key: свадьба
      category: wedding
`,
			errMsg: "classifier",
		},
		{
			name: "studio without register token",
			yaml: `
studios:
  hohlovka:
    name: Хохловка
`,
			errMsg: "RegisterToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(t, tt.yaml)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_AncillaryKeys(t *testing.T) {
	cfg := &Config{}
	assert.NotEmpty(t, cfg.AncillaryKeys())

	cfg.Classifier.Ancillary = []string{"фон"}
	keys := cfg.AncillaryKeys()
	keys[0] = "changed"
	assert.Equal(t, []string{"фон"}, cfg.Classifier.Ancillary)
}

func clearGoogleEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(k, "")
	}
}

func TestConfig_SheetsConfig(t *testing.T) {
	clearGoogleEnv(t)

	cfg, err := load(t, `
studios:
  hohlovka:
    name: Хохловка
    register_token: хохловка
    summary_spreadsheet_id: sum
    register_spreadsheet_id: reg
sheets:
  client_id: id
  client_secret: secret
  token_file: /tokens/studio.json
  retry_attempts: 4
`)
	require.NoError(t, err)

	sc := cfg.SheetsConfig()
	assert.Equal(t, "sum", sc.SummarySpreadsheetID)
	assert.Equal(t, "reg", sc.RegisterSpreadsheetID)
	assert.Equal(t, "/tokens/studio.json", sc.TokenFile)
	assert.Equal(t, 4, sc.RetryAttempts)
	require.NoError(t, sc.Validate())

	oauth := cfg.OAuth2Config()
	assert.Equal(t, "id", oauth.ClientID)
	assert.Equal(t, "/tokens/studio.json", oauth.TokenFile)

	cfg.Sheets.RefreshToken = "refresh"
	assert.Empty(t, cfg.SheetsConfig().TokenFile)
}

func TestConfig_SheetsConfigServiceAccountFromEnv(t *testing.T) {
	clearGoogleEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/keys/sa.json")

	cfg, err := load(t, "")
	require.NoError(t, err)

	sc := cfg.SheetsConfig()
	assert.Equal(t, "/keys/sa.json", sc.ServiceAccountPath)
	assert.Empty(t, sc.TokenFile)
	assert.True(t, sc.HasServiceAccount())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("STUDIO_TEST_ROOT", "/srv")

	assert.Empty(t, ExpandPath(""))
	assert.Equal(t, filepath.Join(home, "bookings"), ExpandPath("~/bookings"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/srv/register", ExpandPath("$STUDIO_TEST_ROOT/register"))
	assert.Equal(t, "relative/dir", ExpandPath("relative/dir"))
	assert.Equal(t, filepath.Join(home, ".config", AppDir), Dir())
}
