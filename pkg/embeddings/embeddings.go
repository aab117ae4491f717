// Package embeddings reads and writes dataset embedding exports in the
// platform's CSV and parquet layouts, and provides a small projection
// helper for visualizing high-dimensional embeddings.
package embeddings

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Row is a single embedding record: the sample's filename, its embedding
// vector and its integer class label.
type Row struct {
	FileName  string
	Embedding []float32
	Label     int
}

// ReadCSV loads an embeddings export from path. The expected layout is a
// header row of filenames, embedding_0..embedding_{d-1}, labels followed
// by one record per sample.
func ReadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	// csv.Reader enforces a uniform field count across records, so every
	// row is guaranteed to have the header's dimensionality.
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading %s: missing header row", path)
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	dims := len(records[0]) - 2

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row := Row{
			FileName:  record[0],
			Embedding: make([]float32, 0, dims),
		}
		for _, field := range record[1 : 1+dims] {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("reading %s row %d: embedding value %q: %w", path, i+1, field, err)
			}
			row.Embedding = append(row.Embedding, float32(v))
		}
		row.Label, err = strconv.Atoi(record[dims+1])
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: label %q: %w", path, i+1, record[dims+1], err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func checkHeader(header []string) error {
	if len(header) < 3 || header[0] != "filenames" || header[len(header)-1] != "labels" {
		return fmt.Errorf("unexpected header columns %v", header)
	}
	for i, column := range header[1 : len(header)-1] {
		if column != fmt.Sprintf("embedding_%d", i) {
			return fmt.Errorf("unexpected embedding column %q at position %d", column, i+1)
		}
	}
	return nil
}

// WriteCSV writes rows to path in the layout ReadCSV consumes,
// overwriting any existing file. All rows must share one embedding
// dimensionality, and at least one row is required since the header is
// derived from the data.
func WriteCSV(path string, rows []Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("writing %s: no rows", path)
	}
	dims := len(rows[0].Embedding)
	for i, row := range rows {
		if len(row.Embedding) != dims {
			return fmt.Errorf("writing %s: row %d has %d dimensions, want %d", path, i, len(row.Embedding), dims)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	header := make([]string, 0, dims+2)
	header = append(header, "filenames")
	for i := range dims {
		header = append(header, fmt.Sprintf("embedding_%d", i))
	}
	header = append(header, "labels")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	record := make([]string, 0, dims+2)
	for _, row := range rows {
		record = record[:0]
		record = append(record, row.FileName)
		for _, v := range row.Embedding {
			record = append(record, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		record = append(record, strconv.Itoa(row.Label))
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
