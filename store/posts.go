package store

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
)

// WritePosts writes company,text,created_at,sentiment,username rows.
func WritePosts(w io.Writer, posts []xcrawler.ScoredPost) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"company", "text", "created_at", "sentiment", "username"}); err != nil {
		return err
	}
	for _, p := range posts {
		created := ""
		if !p.Post.CreatedAt.IsZero() {
			created = p.Post.CreatedAt.UTC().Format(time.RFC3339)
		}
		rec := []string{
			p.Company,
			p.Post.Text,
			created,
			strconv.FormatFloat(p.Sentiment, 'f', 4, 64),
			p.Username,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SavePosts writes scored posts to path.
func SavePosts(path string, posts []xcrawler.ScoredPost) error {
	return writeFile(path, func(w io.Writer) error { return WritePosts(w, posts) })
}

// CountRow is one line of a count export.
type CountRow struct {
	Company     string
	Date        time.Time
	CountDay    int
	CountWindow int
}

// WriteCounts writes company,date,count_day,count_window rows.
func WriteCounts(w io.Writer, rows []CountRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"company", "date", "count_day", "count_window"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Company, r.Date.Format(time.DateOnly), strconv.Itoa(r.CountDay), strconv.Itoa(r.CountWindow)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCounts writes count rows to path.
func SaveCounts(path string, rows []CountRow) error {
	return writeFile(path, func(w io.Writer) error { return WriteCounts(w, rows) })
}
