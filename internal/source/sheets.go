package source

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"raciones-dashboard/internal/models"
)

const defaultSheetsBaseURL = "https://docs.google.com/spreadsheets/d/"

// Sheets reads a published Google spreadsheet through its CSV export. The
// export addresses tabs by gid, so GIDs maps sheet index to gid. Index 0
// falls back to gid 0, the first tab of a new spreadsheet.
type Sheets struct {
	SpreadsheetID string
	GIDs          map[int]string
	BaseURL       string
	Client        *http.Client
}

func NewSheets(spreadsheetID string, gids map[int]string) *Sheets {
	return &Sheets{
		SpreadsheetID: spreadsheetID,
		GIDs:          gids,
		BaseURL:       defaultSheetsBaseURL,
		Client:        &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *Sheets) Name() string {
	return "sheets:" + s.SpreadsheetID
}

// ExportURL is the CSV export address of one tab.
func (s *Sheets) ExportURL(sheetIndex int) (string, error) {
	gid, ok := s.GIDs[sheetIndex]
	if !ok {
		if sheetIndex != 0 {
			return "", fmt.Errorf("%w: no gid configured for sheet %d", ErrSheetNotFound, sheetIndex)
		}
		gid = "0"
	}
	q := url.Values{}
	q.Set("format", "csv")
	q.Set("gid", gid)
	return s.BaseURL + url.PathEscape(s.SpreadsheetID) + "/export?" + q.Encode(), nil
}

func (s *Sheets) Fetch(ctx context.Context, sheetIndex int) ([]models.RawRow, error) {
	exportURL, err := s.ExportURL(sheetIndex)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets export sheet %d: %w", sheetIndex, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: sheet %d", ErrSheetNotFound, sheetIndex)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets export sheet %d: unexpected status %s", sheetIndex, resp.Status)
	}
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && !strings.Contains(mediaType, "csv") {
		return nil, fmt.Errorf("%w: sheet %d answered %s", ErrNotCSV, sheetIndex, mediaType)
	}

	return ReadCSV(resp.Body)
}
