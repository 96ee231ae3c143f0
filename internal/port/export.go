package port

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

// timeFormat renders timestamps in UTC with millisecond precision.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	exportHeader = []string{
		"url",
		"title",
		"domain",
		"category",
		"firstSeen",
		"lastCategorized",
		"lastAccessed",
		"favicon",
		"savedDate",
		"firstOpened",
		"lastOpened",
		"lastCloseTime",
	}
	mlHeader = []string{"mlPrediction", "mlConfidence"}
)

// formatTime renders ms as absolute time, empty when unset.
func formatTime(ms int64) string {
	if ms <= 0 {
		return ""
	}

	return record.Time(ms).Format(timeFormat)
}

// ExportCSV writes urls as CSV to w. When urls is nil every saved record
// with its close history is read from src. ML columns are appended when ml
// is not nil.
func ExportCSV(ctx context.Context, w io.Writer, src Source, urls []*vault.SavedURL, ml MLSource) error {
	if urls == nil {
		var err error
		urls, err = src.SavedURLs(record.Saved, true)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	header := exportHeader
	if ml != nil {
		header = append(append([]string{}, exportHeader...), mlHeader...)
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export header: %w", err)
	}

	for _, u := range urls {
		row := []string{
			u.URL.URL,
			u.Title,
			u.Domain,
			u.Category.String(),
			formatTime(u.FirstSeen),
			formatTime(u.LastCategorized),
			formatTime(u.LastAccessed),
			u.Favicon,
			formatTime(u.SavedDate),
			formatTime(u.FirstOpened),
			formatTime(u.LastOpened),
			formatTime(u.LastCloseTime),
		}

		if ml != nil {
			cols, err := mlColumns(ctx, ml, u.URL.URL)
			if err != nil {
				return err
			}
			row = append(row, cols...)
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export %q: %w", u.URL.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	slog.Info("exported records", "count", len(urls), "ml", ml != nil)

	return nil
}

func mlColumns(ctx context.Context, ml MLSource, url string) ([]string, error) {
	p, err := ml.PredictionFor(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("export prediction: %w", err)
	}

	if p == nil {
		return []string{"", ""}, nil
	}

	return []string{p.Category.String(), strconv.FormatFloat(p.Confidence, 'f', 4, 64)}, nil
}
