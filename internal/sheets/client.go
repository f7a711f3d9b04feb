package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/studio-ledger/internal/common"
)

// API is the subset of the Sheets service the reader and writer use.
type API interface {
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int) error
	GetValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	BatchUpdateValues(ctx context.Context, spreadsheetID string, data []*sheets.ValueRange) error
}

// ServiceAPI implements API over the Google Sheets v4 service.
type ServiceAPI struct {
	svc *sheets.Service
}

var _ API = (*ServiceAPI)(nil)

// NewServiceAPI authenticates with config and wraps the resulting service.
func NewServiceAPI(ctx context.Context, config Config) (*ServiceAPI, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &ServiceAPI{svc: svc}, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	switch {
	case config.ServiceAccountJSON != "":
		slog.Debug("Using inline service account credentials")
		return sheets.NewService(ctx,
			option.WithCredentialsJSON([]byte(config.ServiceAccountJSON)),
			option.WithScopes(sheets.SpreadsheetsScope))

	case config.ServiceAccountPath != "":
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		tokenSource, err = jwtTokenSource(ctx, jsonKey)
		if err != nil {
			return nil, err
		}

	default:
		ts, err := oauthTokenSource(ctx, config)
		if err != nil {
			return nil, err
		}
		tokenSource = ts
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// oauthTokenSource refreshes from the configured refresh token or from the
// token saved by `studio auth`.
func oauthTokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	oauthConfig := OAuth2Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenFile:    config.TokenFile,
	}

	if config.RefreshToken != "" {
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		return oauthConfig.oauth2().TokenSource(ctx, token), nil
	}
	token, err := LoadToken(config.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("no usable token in %s, run `studio auth` first: %w", config.TokenFile, err)
	}
	return oauthConfig.oauth2().TokenSource(ctx, token), nil
}

// jwtTokenSource signs requests with a service account key.
func jwtTokenSource(ctx context.Context, jsonKey []byte) (oauth2.TokenSource, error) {
	jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return jwtConfig.TokenSource(ctx), nil
}

// SheetTitles lists the sheet titles of a spreadsheet.
func (a *ServiceAPI) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := a.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	return titles, nil
}

// AddSheet appends an empty sheet of the given size.
func (a *ServiceAPI) AddSheet(ctx context.Context, spreadsheetID, title string, rows, cols int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return mapError(err)
}

// GetValues reads the formatted values of rng.
func (a *ServiceAPI) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Values, nil
}

// BatchUpdateValues writes all ranges in one request.
func (a *ServiceAPI) BatchUpdateValues(ctx context.Context, spreadsheetID string, data []*sheets.ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}
	_, err := a.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return mapError(err)
}

// mapError translates API failures into common sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests,
		strings.Contains(strings.ToLower(apiErr.Message), "quota exceeded"):
		return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
	case apiErr.Code == http.StatusNotFound,
		apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
		return fmt.Errorf("%w: %v", common.ErrNotFound, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	}
	return common.Permanent(err)
}
