package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write replaces the contents of every tab in the workbook.
func (w *Writer) Write(ctx context.Context, wb *Workbook) error {
	w.logger.Info("starting sheets export",
		"tabs", len(wb.Tabs),
		"rows", wb.RowCount(),
		"date_range", wb.Range.String())

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	spreadsheet, err := common.RetryValue(ctx, func() (*sheets.Spreadsheet, error) {
		return w.getOrCreateSpreadsheet(ctx, wb)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetIDs, err := w.ensureTabs(ctx, spreadsheet, wb)
	if err != nil {
		return fmt.Errorf("failed to create tabs: %w", err)
	}

	for _, tab := range wb.Tabs {
		err := common.WithRetry(ctx, func() error {
			if clearErr := w.clearTab(ctx, spreadsheet.SpreadsheetId, tab.Title); clearErr != nil {
				return clearErr
			}
			return w.writeData(ctx, spreadsheet.SpreadsheetId, tab)
		}, retryOpts)
		if err != nil {
			return fmt.Errorf("failed to write tab %q: %w", tab.Title, err)
		}
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheet.SpreadsheetId, wb, sheetIDs)
		}, retryOpts)
		if err != nil {
			// formatting is cosmetic; the data is already written
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("sheets export completed",
		"spreadsheet_id", spreadsheet.SpreadsheetId,
		"url", spreadsheet.SpreadsheetUrl)

	return nil
}

// tokenSource authenticates as the service account when one is configured
// and otherwise with the stored OAuth2 refresh token.
func (c *Config) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if c.ServiceAccountPath == "" {
		client := OAuth2Config{ClientID: c.ClientID, ClientSecret: c.ClientSecret}.endpoint("")
		return client.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken, TokenType: "Bearer"}), nil
	}

	key, err := os.ReadFile(c.ServiceAccountPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key file: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse service account key: %w", err)
	}
	return jwt.TokenSource(ctx), nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	ts, err := config.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
}

// getOrCreateSpreadsheet gets the configured spreadsheet or creates a new
// one holding the workbook's tabs.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context, wb *Workbook) (*sheets.Spreadsheet, error) {
	if w.config.SpreadsheetID != "" {
		existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return existing, nil
	}

	title := wb.Title
	if title == "" {
		title = w.config.SpreadsheetName
	}
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: w.config.TimeZone,
		},
	}
	for _, tab := range wb.Tabs {
		spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: tab.Title},
		})
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created, nil
}

// ensureTabs adds any tab the spreadsheet lacks and returns the sheet id of
// every tab by title.
func (w *Writer) ensureTabs(ctx context.Context, spreadsheet *sheets.Spreadsheet, wb *Workbook) (map[string]int64, error) {
	ids := make(map[string]int64, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil {
			ids[s.Properties.Title] = s.Properties.SheetId
		}
	}

	requests := missingTabRequests(ids, wb)
	if len(requests) == 0 {
		return ids, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheet.SpreadsheetId,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	for _, reply := range resp.Replies {
		if reply.AddSheet != nil && reply.AddSheet.Properties != nil {
			props := reply.AddSheet.Properties
			ids[props.Title] = props.SheetId
		}
	}
	return ids, nil
}

func missingTabRequests(existing map[string]int64, wb *Workbook) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range wb.Tabs {
		if _, ok := existing[tab.Title]; ok {
			continue
		}
		requests = append(requests, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: tab.Title},
			},
		})
	}
	return requests
}

// a1 quotes a tab title for use in an A1 range.
func a1(title, cells string) string {
	return fmt.Sprintf("'%s'!%s", title, cells)
}

// clearTab clears all data from one tab.
func (w *Writer) clearTab(ctx context.Context, spreadsheetID, title string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, a1(title, "A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// writeData writes one tab's rows in batches.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, tab Tab) error {
	for i, batch := range batches(tab.Rows, w.config.BatchSize) {
		start := i*w.config.BatchSize + 1
		valueRange := &sheets.ValueRange{Values: batch}

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, a1(tab.Title, fmt.Sprintf("A%d", start)), valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", start, err)
		}

		w.logger.Debug("wrote batch", "tab", tab.Title, "start_row", start, "rows", len(batch))
	}

	return nil
}

func batches(rows [][]any, size int) [][][]any {
	if size <= 0 {
		size = len(rows)
	}
	var out [][][]any
	for i := 0; i < len(rows); i += size {
		out = append(out, rows[i:min(i+size, len(rows))])
	}
	return out
}

// formattingRequests bolds and freezes each header row, formats currency
// columns and resizes columns to fit.
func formattingRequests(wb *Workbook, sheetIDs map[string]int64) []*sheets.Request {
	var requests []*sheets.Request
	for _, tab := range wb.Tabs {
		id, ok := sheetIDs[tab.Title]
		if !ok || len(tab.Rows) == 0 {
			continue
		}
		width := int64(len(tab.Rows[0]))

		requests = append(requests,
			&sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    0,
						EndRowIndex:      1,
						StartColumnIndex: 0,
						EndColumnIndex:   width,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
						},
					},
					Fields: "userEnteredFormat.textFormat",
				},
			},
			&sheets.Request{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{
						SheetId: id,
						GridProperties: &sheets.GridProperties{
							FrozenRowCount: 1,
						},
					},
					Fields: "gridProperties.frozenRowCount",
				},
			},
		)

		for _, col := range tab.CurrencyColumns {
			requests = append(requests, &sheets.Request{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: &sheets.GridRange{
						SheetId:          id,
						StartRowIndex:    1,
						EndRowIndex:      int64(len(tab.Rows)),
						StartColumnIndex: int64(col),
						EndColumnIndex:   int64(col) + 1,
					},
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							NumberFormat: &sheets.NumberFormat{
								Type:    "NUMBER",
								Pattern: "#,##0.00;[Red]-#,##0.00",
							},
						},
					},
					Fields: "userEnteredFormat.numberFormat",
				},
			})
		}

		requests = append(requests, &sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    id,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   width,
				},
			},
		})
	}
	return requests
}

// applyFormatting applies formatting to every tab.
func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, wb *Workbook, sheetIDs map[string]int64) error {
	requests := formattingRequests(wb, sheetIDs)
	if len(requests) == 0 {
		return nil
	}
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
