package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mateconpizza/tabkeep/internal/record"
	"github.com/mateconpizza/tabkeep/internal/sys/terminal"
	"github.com/mateconpizza/tabkeep/internal/vault"
)

const dateFormat = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}

	return nil
}

func formatDate(ms int64) string {
	if ms <= 0 {
		return "-"
	}

	return record.Time(ms).Local().Format(dateFormat)
}

// shorten truncates s to n runes.
func shorten(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func printURLs(w io.Writer, us []*vault.SavedURL) error {
	width := terminal.Width()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tLAST ACCESS\tLAST CLOSE\tURL")

	for _, u := range us {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			u.ID,
			u.Category,
			formatDate(u.LastAccessed),
			formatDate(u.LastCloseTime),
			shorten(u.URL.URL, width/2),
		)
	}

	return tw.Flush()
}

func printCurrentTabs(w io.Writer, ts []*record.CurrentTab) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABS\tWINDOWS\tOPENED\tURL")

	for _, t := range ts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			t.OpenCount,
			joinIDs(t.WindowIDs),
			formatDate(t.FirstOpened),
			shorten(t.URL, terminal.Width()/2),
		)
	}

	return tw.Flush()
}

func printSessions(w io.Writer, ss []vault.Session) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLOSED\tCOUNT\tURL IDS")

	for _, s := range ss {
		fmt.Fprintf(tw, "%s\t%d\t%s\n",
			record.Time(s.CloseTime).Local().Format(time.DateTime),
			s.Count,
			joinIDs(s.URLIDs),
		)
	}

	return tw.Flush()
}

func printCleanup(w io.Writer, res *vault.CleanupResult) {
	fmt.Fprintf(w, "urls deleted:          %d\n", res.URLsDeleted)
	fmt.Fprintf(w, "events deleted:        %d\n", res.EventsDeleted)
	fmt.Fprintf(w, "predictions deleted:   %d\n", res.PredictionsDeleted)
	fmt.Fprintf(w, "training data deleted: %d\n", res.TrainingDataDeleted)

	for _, err := range res.Errors {
		fmt.Fprintf(w, "error: %s\n", err)
	}
}

func joinIDs(ids []int64) string {
	s := make([]string, 0, len(ids))
	for _, id := range ids {
		s = append(s, fmt.Sprint(id))
	}

	return strings.Join(s, ",")
}

// parseCategories parses every category name in ss.
func parseCategories(ss []string) ([]record.Category, error) {
	cs := make([]record.Category, 0, len(ss))
	for _, s := range ss {
		c, err := record.ParseCategory(s)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}

	return cs, nil
}
