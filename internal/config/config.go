// Package config loads and validates the application configuration.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/studio-ledger/internal/classification"
	"github.com/Veraticus/studio-ledger/internal/common"
	"github.com/Veraticus/studio-ledger/internal/model"
	"github.com/Veraticus/studio-ledger/internal/register"
	"github.com/Veraticus/studio-ledger/internal/report"
	"github.com/Veraticus/studio-ledger/internal/service"
)

// Register source kinds.
const (
	RegisterSourceSheets = "sheets"
	RegisterSourceCSV    = "csv"
	RegisterSourceNone   = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Studios    map[string]Studio `mapstructure:"studios" validate:"required,min=1,dive"`
	Classifier ClassifierConfig  `mapstructure:"classifier"`
	Studio     string            `mapstructure:"studio" validate:"required"`
	Logging    LoggingConfig     `mapstructure:"logging"`
	Bookings   BookingsConfig    `mapstructure:"bookings"`
	Register   RegisterConfig    `mapstructure:"register"`
	Sheets     SheetsConfig      `mapstructure:"sheets"`
	Engine     EngineConfig      `mapstructure:"engine"`
}

// Studio is one studio profile.
type Studio struct {
	Layout LayoutConfig `mapstructure:"layout"`
	// Name must appear verbatim in the studio's booking texts.
	Name string `mapstructure:"name" validate:"required"`
	// RegisterToken must appear in the description of the studio's register rows.
	RegisterToken         string `mapstructure:"register_token" validate:"required"`
	SummarySpreadsheetID  string `mapstructure:"summary_spreadsheet_id"`
	RegisterSpreadsheetID string `mapstructure:"register_spreadsheet_id"`
	// ID is the studio's number in the external reservation system that
	// exports the booking texts. It only labels output; zero means unset.
	ID                    int    `mapstructure:"id" validate:"gte=0"`
}

// LayoutConfig overrides summary sheet rows by field or category name.
type LayoutConfig struct {
	Financial map[string]int `mapstructure:"financial" validate:"dive,gt=0"`
	Hours     map[string]int `mapstructure:"hours" validate:"dive,gt=0"`
}

// ClassifierConfig replaces the built-in keyword tables when non-empty.
// Keywords are a list because keys such as "тех.бронь" contain the viper
// key delimiter.
type ClassifierConfig struct {
	Keywords  []KeywordConfig `mapstructure:"keywords" validate:"dive"`
	Ancillary []string        `mapstructure:"ancillary" validate:"dive,required"`
}

// KeywordConfig maps one lower-case key to a category name.
type KeywordConfig struct {
	Key      string `mapstructure:"key" validate:"required"`
	Category string `mapstructure:"category" validate:"required"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// BookingsConfig locates the booking text files.
type BookingsConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// RegisterConfig selects where register tables come from.
type RegisterConfig struct {
	Source string `mapstructure:"source" validate:"oneof=sheets csv none"`
	CSVDir string `mapstructure:"csv_dir" validate:"required_if=Source csv"`
	Comma  string `mapstructure:"comma" validate:"omitempty,len=1"`
}

// SheetsConfig holds Google credentials shared by all studios.
type SheetsConfig struct {
	ClientID           string        `mapstructure:"client_id"`
	ClientSecret       string        `mapstructure:"client_secret"`
	RefreshToken       string        `mapstructure:"refresh_token"`
	TokenFile          string        `mapstructure:"token_file"`
	ServiceAccountPath string        `mapstructure:"service_account_path"`
	RetryDelay         time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
	RetryAttempts      int           `mapstructure:"retry_attempts" validate:"gte=0,lte=10"`
}

// EngineConfig tunes the run.
type EngineConfig struct {
	Workers       int           `mapstructure:"workers" validate:"gte=1,lte=64"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"gte=1,lte=10"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("studio", "hohlovka")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("bookings.dir", "./bookings")
	v.SetDefault("register.source", RegisterSourceSheets)
	v.SetDefault("register.comma", ",")
	v.SetDefault("sheets.token_file", "~/.config/studio/token.json")
	v.SetDefault("sheets.retry_attempts", 3)
	v.SetDefault("sheets.retry_delay", "2s")
	v.SetDefault("engine.workers", 1)
	v.SetDefault("engine.retry_attempts", 3)
	v.SetDefault("engine.retry_delay", "1s")
}

// DefaultStudios returns the built-in studio profiles.
func DefaultStudios() map[string]Studio {
	return map[string]Studio{
		"hohlovka": {ID: 21, Name: "Хохловка", RegisterToken: "хохловка"},
		"yauza":    {ID: 32, Name: "Яуза", RegisterToken: "яуза"},
	}
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if len(cfg.Studios) == 0 {
		cfg.Studios = DefaultStudios()
	}
	cfg.Studio = strings.ToLower(strings.TrimSpace(cfg.Studio))
	cfg.Bookings.Dir = ExpandPath(cfg.Bookings.Dir)
	cfg.Register.CSVDir = ExpandPath(cfg.Register.CSVDir)
	cfg.Sheets.TokenFile = ExpandPath(cfg.Sheets.TokenFile)
	cfg.Sheets.ServiceAccountPath = ExpandPath(cfg.Sheets.ServiceAccountPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", common.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	if _, ok := c.Studios[c.Studio]; !ok {
		return fmt.Errorf("%w: studio %q has no profile (known: %s)",
			common.ErrInvalidConfig, c.Studio, strings.Join(c.StudioKeys(), ", "))
	}
	for key, s := range c.Studios {
		if _, err := c.layoutFor(s); err != nil {
			return fmt.Errorf("%w: studio %s layout: %v", common.ErrInvalidConfig, key, err)
		}
	}
	if _, err := c.BuildClassifier(); err != nil {
		return fmt.Errorf("%w: classifier: %v", common.ErrInvalidConfig, err)
	}
	return nil
}

// StudioKeys lists the profile keys in sorted order.
func (c *Config) StudioKeys() []string {
	keys := make([]string, 0, len(c.Studios))
	for k := range c.Studios {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Active returns the selected studio profile.
func (c *Config) Active() Studio {
	return c.Studios[c.Studio]
}

// Layout returns the summary layout of the selected studio.
func (c *Config) Layout() (report.Layout, error) {
	return c.layoutFor(c.Active())
}

func (c *Config) layoutFor(s Studio) (report.Layout, error) {
	return report.DefaultLayout().Merge(s.Layout.Financial, s.Layout.Hours)
}

// Keywords returns the configured keyword table, or the built-in table when
// none is configured.
func (c *Config) Keywords() ([]classification.Keyword, error) {
	if len(c.Classifier.Keywords) == 0 {
		return classification.DefaultKeywords(), nil
	}
	out := make([]classification.Keyword, 0, len(c.Classifier.Keywords))
	for _, kw := range c.Classifier.Keywords {
		cat, err := model.ParseCategory(strings.ToLower(strings.TrimSpace(kw.Category)))
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw.Key, err)
		}
		out = append(out, classification.Keyword{Key: kw.Key, Category: cat})
	}
	return out, nil
}

// AncillaryKeys returns the configured ancillary keys or the built-in set.
func (c *Config) AncillaryKeys() []string {
	if len(c.Classifier.Ancillary) == 0 {
		return classification.DefaultAncillaryKeys()
	}
	return append([]string(nil), c.Classifier.Ancillary...)
}

// BuildClassifier constructs the classifier for this configuration.
func (c *Config) BuildClassifier() (*classification.Classifier, error) {
	keywords, err := c.Keywords()
	if err != nil {
		return nil, err
	}
	return classification.New(keywords, c.AncillaryKeys())
}

// BuildReconciler constructs the register reconciler of the selected studio.
func (c *Config) BuildReconciler() (*register.Reconciler, error) {
	opts := register.DefaultOptions(c.Active().RegisterToken)
	opts.AncillaryKeys = c.AncillaryKeys()
	return register.New(opts)
}

// EngineRetry returns the retry options for source reads.
func (c *Config) EngineRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  c.Engine.RetryAttempts,
		InitialDelay: c.Engine.RetryDelay,
		MaxDelay:     10 * c.Engine.RetryDelay,
		Multiplier:   2.0,
	}
}

// SheetsRetry returns the retry options for sheet writes.
func (c *Config) SheetsRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  c.Sheets.RetryAttempts,
		InitialDelay: c.Sheets.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// CSVComma is the register CSV separator.
func (c *Config) CSVComma() rune {
	if c.Register.Comma == "" {
		return ','
	}
	return []rune(c.Register.Comma)[0]
}
