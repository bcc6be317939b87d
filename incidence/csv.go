package incidence

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ReadCSV reads an incidence from comma separated values. The first
// column holds ISO dates, every other column holds the counts of one
// group. A header line is optional; if present it names the groups.
func ReadCSV(r io.Reader) (*Incidence, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("Empty incidence file")
	}

	var groups []string
	if _, err := time.Parse(DateLayout, strings.TrimSpace(records[0][0])); err != nil {
		groups = records[0][1:]
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, errors.New("Incidence file has a header only")
	}

	dates := make([]time.Time, len(records))
	counts := make([][]int, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("Line %d: expected a date and at least one count", i+1)
		}
		dates[i], err = time.Parse(DateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("Line %d: %v", i+1, err)
		}
		counts[i] = make([]int, len(rec)-1)
		for j, f := range rec[1:] {
			counts[i][j], err = strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("Line %d: %v", i+1, err)
			}
		}
	}
	return NewGrouped(dates, counts, groups)
}
