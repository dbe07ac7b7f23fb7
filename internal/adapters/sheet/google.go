package sheet

import (
	"context"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// playgroundTitle is the title given to the default first worksheet of a
// newly created spreadsheet. It is left for members to do adhoc analysis,
// readmes and the like; the bot never writes to it.
const playgroundTitle = "Playground"

// Client wraps the Google APIs needed to locate, create and edit
// spreadsheets. Credentials come from a service account JSON file, see
// https://developers.google.com/identity/protocols/oauth2/service-account.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewClient builds a Client authenticated with the given service account
// credentials file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	sheetsSvc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}
	return &Client{sheets: sheetsSvc, drive: driveSvc}, nil
}

// OpenOrCreate returns the spreadsheet with the given name, creating it when
// absent. On creation every writer email is granted write permission and the
// default worksheet is renamed to Playground. An existing spreadsheet is
// returned as-is; shares are not re-applied.
func (c *Client) OpenOrCreate(ctx context.Context, name string, writers []string) (Document, error) {
	id, url, err := c.findSpreadsheet(ctx, name)
	if err != nil {
		return nil, err
	}
	if id != "" {
		return &googleDocument{client: c, spreadsheetID: id, url: url}, nil
	}

	created, err := c.sheets.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: name},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create spreadsheet %q: %w", name, err)
	}

	for _, writer := range writers {
		_, err := c.drive.Permissions.Create(created.SpreadsheetId, &drive.Permission{
			Type:         "user",
			Role:         "writer",
			EmailAddress: writer,
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("share spreadsheet with %q: %w", writer, err)
		}
	}

	if len(created.Sheets) > 0 {
		first := created.Sheets[0].Properties
		_, err := c.sheets.Spreadsheets.BatchUpdate(created.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{SheetId: first.SheetId, Title: playgroundTitle},
					Fields:     "title",
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("rename default worksheet: %w", err)
		}
	}

	return &googleDocument{client: c, spreadsheetID: created.SpreadsheetId, url: created.SpreadsheetUrl}, nil
}

// findSpreadsheet looks up a spreadsheet by exact name via the Drive API.
// Returns empty id when no match exists.
func (c *Client) findSpreadsheet(ctx context.Context, name string) (id, url string, err error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMimeType)
	list, err := c.drive.Files.List().
		Q(query).
		Fields("files(id, name, webViewLink)").
		Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("list spreadsheets: %w", err)
	}
	for _, f := range list.Files {
		if f.Name == name {
			return f.Id, f.WebViewLink, nil
		}
	}
	return "", "", nil
}

// googleDocument implements Document over one spreadsheet.
type googleDocument struct {
	client        *Client
	spreadsheetID string
	url           string
}

func (d *googleDocument) URL() string { return d.url }

func (d *googleDocument) Worksheet(ctx context.Context, title string) (Worksheet, error) {
	exists, err := d.worksheetExists(ctx, title)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrWorksheetNotFound, title)
	}
	return &googleWorksheet{doc: d, title: title}, nil
}

func (d *googleDocument) CreateWorksheet(ctx context.Context, title string, header []string) (Worksheet, error) {
	exists, err := d.worksheetExists(ctx, title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrWorksheetExists, title)
	}

	_, err = d.client.sheets.Spreadsheets.BatchUpdate(d.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("add worksheet %q: %w", title, err)
	}

	ws := &googleWorksheet{doc: d, title: title}
	if err := ws.Append(ctx, header); err != nil {
		return nil, fmt.Errorf("write header of %q: %w", title, err)
	}
	return ws, nil
}

func (d *googleDocument) worksheetExists(ctx context.Context, title string) (bool, error) {
	meta, err := d.client.sheets.Spreadsheets.Get(d.spreadsheetID).
		Fields("sheets(properties(title))").
		Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// googleWorksheet implements Worksheet over one sheet of the spreadsheet.
type googleWorksheet struct {
	doc   *googleDocument
	title string
}

func (w *googleWorksheet) Title() string { return w.title }

func (w *googleWorksheet) Values(ctx context.Context) ([][]string, error) {
	resp, err := w.doc.client.sheets.Spreadsheets.Values.Get(w.doc.spreadsheetID, w.gridRange()).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", w.title, err)
	}
	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		grid[i] = cells
	}
	return grid, nil
}

func (w *googleWorksheet) Append(ctx context.Context, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	// USER_ENTERED keeps the service's own value formatting, matching what
	// a member typing into the sheet would get.
	_, err := w.doc.client.sheets.Spreadsheets.Values.Append(w.doc.spreadsheetID, w.gridRange(), &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to worksheet %q: %w", w.title, err)
	}
	return nil
}

func (w *googleWorksheet) gridRange() string {
	return "'" + w.title + "'"
}
