package scraper

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoLinksColumn is returned when the links file has no "links" header
var ErrNoLinksColumn = errors.New(`links file has no "links" column`)

// ReadLinksFile reads the competition URLs from the "links" column of a CSV file
func ReadLinksFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening links file: %w", err)
	}
	defer f.Close()

	return ReadLinks(f)
}

// ReadLinks reads competition URLs from CSV data. Blank entries are skipped.
func ReadLinks(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading links header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == "links" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, ErrNoLinksColumn
	}

	var urls []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading links: %w", err)
		}
		if col < len(rec) {
			if u := strings.TrimSpace(rec[col]); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls, nil
}
