// Package store persists account mappings, name mappings and exported posts.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	xcrawler "github.com/anatolykoptev/go-xcrawler"
)

var accountHeader = []string{"company_normalized", "twitter_id", "username", "name", "verified"}

// WriteAccounts writes rows as CSV. Unknown optional fields are written empty.
func WriteAccounts(w io.Writer, rows []xcrawler.AccountInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(accountHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.CompanyNormalized, deref(r.TwitterID), deref(r.Username), deref(r.Name), ""}
		if r.Verified != nil {
			rec[4] = strconv.FormatBool(*r.Verified)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAccounts parses CSV written by WriteAccounts. Columns are matched by
// header name; empty optional cells read back as nil.
func ReadAccounts(r io.Reader) ([]xcrawler.AccountInfo, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)

	var rows []xcrawler.AccountInfo
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return rec[i]
			}
			return ""
		}
		info := xcrawler.AccountInfo{
			CompanyNormalized: cell("company_normalized"),
			TwitterID:         optional(cell("twitter_id")),
			Username:          optional(cell("username")),
			Name:              optional(cell("name")),
		}
		if v := cell("verified"); v != "" {
			b := strings.EqualFold(v, "true")
			info.Verified = &b
		}
		rows = append(rows, info)
	}
}

// SaveAccounts writes rows to path, replacing the file.
func SaveAccounts(path string, rows []xcrawler.AccountInfo) error {
	return writeFile(path, func(w io.Writer) error { return WriteAccounts(w, rows) })
}

// LoadAccounts reads the account mapping at path.
func LoadAccounts(path string) ([]xcrawler.AccountInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("load accounts %s: %w", path, err)
	}
	return rows, nil
}

// EditAccount sets the username of company's row, appending a new row when
// the company is absent. company is normalized before matching.
func EditAccount(rows []xcrawler.AccountInfo, company, username string) []xcrawler.AccountInfo {
	norm := xcrawler.NormalizeName(company)
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	for i := range rows {
		if rows[i].CompanyNormalized == norm {
			rows[i].Username = &username
			return rows
		}
	}
	return append(rows, xcrawler.AccountInfo{CompanyNormalized: norm, Username: &username})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return col
}

// writeFile writes through a temp file renamed over path on success.
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
