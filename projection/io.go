package projection

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"bitbucket.org/Davydov/epiproj/incidence"
)

// WriteCSV writes the projection as comma separated values. The wide
// format has one row per date and one column per trajectory, the long
// format has one row per date and trajectory.
func (p *Projection) WriteCSV(w io.Writer, long bool) error {
	cw := csv.NewWriter(w)
	value := "incidence"
	if p.cumulative {
		value = "cumulative"
	}
	ndays, nsim := p.Dims()

	if long {
		if err := cw.Write([]string{"date", "sim", value}); err != nil {
			return err
		}
		for j := 0; j < nsim; j++ {
			for i := 0; i < ndays; i++ {
				rec := []string{
					p.dates[i].Format(incidence.DateLayout),
					strconv.Itoa(j + 1),
					strconv.Itoa(p.At(i, j)),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
	} else {
		header := make([]string, nsim+1)
		header[0] = "date"
		for j := 0; j < nsim; j++ {
			header[j+1] = fmt.Sprintf("sim_%d", j+1)
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		rec := make([]string, nsim+1)
		for i := 0; i < ndays; i++ {
			rec[0] = p.dates[i].Format(incidence.DateLayout)
			for j, v := range p.Row(i) {
				rec[j+1] = strconv.Itoa(v)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonProjection is the serialized form of a Projection.
type jsonProjection struct {
	Dates      []string `json:"dates"`
	Counts     [][]int  `json:"counts"`
	Cumulative bool     `json:"cumulative"`
}

// MarshalJSON implements json.Marshaler.
func (p *Projection) MarshalJSON() ([]byte, error) {
	jp := jsonProjection{
		Dates:      make([]string, p.NDays()),
		Counts:     p.Counts(),
		Cumulative: p.cumulative,
	}
	for i, d := range p.dates {
		jp.Dates[i] = d.Format(incidence.DateLayout)
	}
	return json.Marshal(jp)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Projection) UnmarshalJSON(b []byte) error {
	var jp jsonProjection
	if err := json.Unmarshal(b, &jp); err != nil {
		return err
	}
	dates := make([]time.Time, len(jp.Dates))
	for i, s := range jp.Dates {
		d, err := time.Parse(incidence.DateLayout, s)
		if err != nil {
			return err
		}
		dates[i] = d
	}
	np, err := FromCounts(dates, jp.Counts, jp.Cumulative)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}
