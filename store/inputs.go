package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// ReadNames returns the non-blank first-column values of a CSV with a header row.
func ReadNames(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var names []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return names, err
		}
		if len(rec) > 0 && strings.TrimSpace(rec[0]) != "" {
			names = append(names, rec[0])
		}
	}
}

// DatedCompany is one batch input row: an organization and its reference date.
type DatedCompany struct {
	Company string
	Date    time.Time
}

// ReadDatedCompanies reads company,date rows (date as YYYY-MM-DD) after a header row.
func ReadDatedCompanies(r io.Reader) ([]DatedCompany, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var out []DatedCompany
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) < 2 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[1]))
		if err != nil {
			return out, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, DatedCompany{Company: rec[0], Date: d})
	}
}

// ReadFileWith opens path and applies read.
func ReadFileWith[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}

// SaveNames writes a single-column CSV of normalized names.
func SaveNames(path string, names []string) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"normalized_name"}); err != nil {
			return err
		}
		for _, n := range names {
			if err := cw.Write([]string{n}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// SaveMappingCSV writes original_name,normalized_name rows sorted by original name.
func SaveMappingCSV(path string, mapping map[string]string) error {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"original_name", "normalized_name"}); err != nil {
			return err
		}
		for _, k := range keys {
			if err := cw.Write([]string{k, mapping[k]}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// SaveMapping writes the name mapping as indented JSON.
func SaveMapping(path string, mapping map[string]string) error {
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(mapping)
	})
}

// LoadMapping reads a JSON name mapping.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", path, err)
	}
	return m, nil
}
