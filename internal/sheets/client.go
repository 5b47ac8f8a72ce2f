package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/Veraticus/budget-flow/internal/common"
	"github.com/Veraticus/budget-flow/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth2 scopes the client needs: spreadsheet access plus
// Drive metadata to find a spreadsheet by name.
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveMetadataReadonlyScope}

// ValuesAPI is the part of the Sheets API the application uses.
type ValuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	EnsureTab(ctx context.Context, spreadsheetID, tab string) error
}

// Client reads and writes tabs of a single spreadsheet.
type Client struct {
	api           ValuesAPI
	logger        *slog.Logger
	spreadsheetID string
	retry         service.RetryOptions
	batchSize     int
}

// NewClient authenticates against Google and resolves the configured spreadsheet.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	httpClient, err := authorizedClient(ctx, config)
	if err != nil {
		return nil, err
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to create sheets service: %w", common.ErrSheetsConnection, err)
	}

	spreadsheetID := config.SpreadsheetID
	if spreadsheetID == "" {
		spreadsheetID, err = findSpreadsheetByName(ctx, httpClient, config.SpreadsheetName)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("Opened spreadsheet", "id", spreadsheetID, "name", config.SpreadsheetName)

	return NewClientWithAPI(&googleValues{service: srv}, spreadsheetID, config, logger), nil
}

// NewClientWithAPI wraps an existing ValuesAPI, typically a fake in tests.
func NewClientWithAPI(api ValuesAPI, spreadsheetID string, config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}

	return &Client{
		api:           api,
		logger:        logger,
		spreadsheetID: spreadsheetID,
		batchSize:     batchSize,
		retry: service.RetryOptions{
			MaxAttempts:  config.RetryAttempts,
			InitialDelay: config.RetryDelay,
			Multiplier:   2.0,
		},
	}
}

// SpreadsheetID returns the resolved spreadsheet ID.
func (c *Client) SpreadsheetID() string {
	return c.spreadsheetID
}

// call runs fn with retries, classifying Google API errors as retryable or not.
func (c *Client) call(ctx context.Context, fn func() error) error {
	return common.WithRetry(ctx, func() error {
		return classifyAPIError(fn())
	}, c.retry)
}

func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

// authorizedClient builds an HTTP client from a service account key, a refresh
// token, or a saved OAuth2 token file, in that order.
func authorizedClient(ctx context.Context, config Config) (*http.Client, error) {
	var tokenSource oauth2.TokenSource

	switch {
	case config.ServiceAccountPath != "":
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, Scopes...)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	case config.RefreshToken != "":
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	default:
		token, err := LoadToken(config.TokenFile)
		if err != nil {
			return nil, common.NewUserError("no saved Google token; run `budget auth` first", err)
		}
		tokenSource = oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token)
	}

	return oauth2.NewClient(ctx, tokenSource), nil
}

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
	}
}

func findSpreadsheetByName(ctx context.Context, httpClient *http.Client, name string) (string, error) {
	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", fmt.Errorf("%w: unable to create drive service: %w", common.ErrSheetsConnection, err)
	}

	query := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`))
	list, err := driveService.Files.List().Q(query).Fields("files(id, name)").PageSize(10).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: searching for spreadsheet %q: %w", common.ErrSheetsConnection, name, err)
	}

	if len(list.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q: %w", name, common.ErrNotFound)
	}
	if len(list.Files) > 1 {
		slog.Warn("Multiple spreadsheets share this name, using the first", "name", name, "count", len(list.Files))
	}

	return list.Files[0].Id, nil
}

// googleValues adapts the generated Sheets service to ValuesAPI.
type googleValues struct {
	service *sheets.Service
}

func (g *googleValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := g.service.Spreadsheets.Values.Get(spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (g *googleValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := g.service.Spreadsheets.Values.Clear(spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (g *googleValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}

func (g *googleValues) EnsureTab(ctx context.Context, spreadsheetID, tab string) error {
	spreadsheet, err := g.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return err
	}
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			return nil
		}
	}

	_, err = g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab},
			},
		}},
	}).Context(ctx).Do()
	return err
}

// tabRange quotes a tab name for A1 notation, optionally followed by a cell range.
func tabRange(tab, cells string) string {
	quoted := "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}
