// Package sample generates synthetic flight tables for trying out sessions
// against file sources.
package sample

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// MissingToken is written for cells with no value.
const MissingToken = "NA"

// Headers are the generated columns, in order.
var Headers = []string{
	"flight_id",
	"date",
	"carrier",
	"origin",
	"dest",
	"dep_delay",
	"distance",
	"cancelled",
	"notes",
}

var (
	carriers = []string{"AA", "B6", "DL", "UA", "WN", "AS"}
	airports = []string{"JFK", "LGA", "EWR", "SFO", "LAX", "ORD", "ATL", "SEA"}
	remarks  = []string{"crew swap", "weather hold", "gate change", "late inbound"}
)

// Dataset is a generated table with every cell already formatted as text.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

type Config struct {
	Rows      int
	Seed      int64
	StartDate time.Time

	// MissingRate is the share of departure delays recorded as missing on
	// top of those of cancelled flights.
	MissingRate float64
	// CancelRate is the share of cancelled flights.
	CancelRate float64
}

func DefaultConfig() Config {
	return Config{
		Rows:        500,
		Seed:        42,
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MissingRate: 0.05,
		CancelRate:  0.02,
	}
}

// Generate builds a deterministic table for cfg.Seed.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	if cfg.MissingRate < 0 || cfg.MissingRate > 1 || cfg.CancelRate < 0 || cfg.CancelRate > 1 {
		return nil, fmt.Errorf("rates must be within [0, 1]")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	rows := make([][]string, cfg.Rows)
	for i := range rows {
		date := cfg.StartDate.AddDate(0, 0, i/24)
		origin := airports[rng.Intn(len(airports))]
		dest := airports[rng.Intn(len(airports))]
		for dest == origin {
			dest = airports[rng.Intn(len(airports))]
		}
		cancelled := rng.Float64() < cfg.CancelRate

		// Delays are right-skewed and heavier on weekends.
		delay := MissingToken
		if !cancelled && rng.Float64() >= cfg.MissingRate {
			d := rng.ExpFloat64()*15 - 5
			if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
				d *= 1.4
			}
			delay = fToStr(d, 1)
		}

		notes := ""
		if rng.Float64() < 0.1 {
			notes = remarks[rng.Intn(len(remarks))]
		}

		rows[i] = []string{
			strconv.Itoa(1000 + i),
			date.Format("2006-01-02"),
			carriers[rng.Intn(len(carriers))],
			origin,
			dest,
			delay,
			strconv.Itoa(200 + rng.Intn(2400)),
			strconv.FormatBool(cancelled),
			notes,
		}
	}

	return &Dataset{Headers: Headers, Rows: rows}, nil
}

// Write stores ds as xlsx when path ends in .xlsx, as tab-separated text for
// .tsv and as CSV otherwise.
func Write(path string, ds *Dataset) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, ds)
	case ".tsv":
		return writeDelimited(path, ds, '\t')
	}
	return writeDelimited(path, ds, ',')
}

func writeDelimited(path string, ds *Dataset, comma rune) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = comma
	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	if err := w.WriteAll(ds.Rows); err != nil {
		return err
	}
	return f.Close()
}

func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &ds.Headers); err != nil {
		return err
	}
	for r, row := range ds.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
