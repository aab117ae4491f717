package embeddings

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetRow mirrors Row with the column layout the platform's parquet
// exports use.
type parquetRow struct {
	FileName  string    `parquet:"name=filename, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Embedding []float32 `parquet:"name=embedding, type=LIST, valuetype=FLOAT"`
	Label     int32     `parquet:"name=label, type=INT32"`
}

const parquetReadBatch = 4096

// WriteParquet writes rows to path as a parquet file, overwriting any
// existing file. At least one row is required.
func WriteParquet(path string, rows []Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("writing %s: no rows", path)
	}

	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 2)
	if err != nil {
		fw.Close()
		return fmt.Errorf("creating parquet writer for %s: %w", path, err)
	}
	for i, row := range rows {
		record := parquetRow{
			FileName:  row.FileName,
			Embedding: row.Embedding,
			Label:     int32(row.Label),
		}
		if err := pw.Write(record); err != nil {
			fw.Close()
			return fmt.Errorf("writing %s row %d: %w", path, i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// ReadParquet loads an embeddings parquet file. The file is memory
// mapped while being decoded, which keeps large exports off the heap.
func ReadParquet(path string) ([]Row, error) {
	mapped, err := mmapOpen(path)
	if err != nil {
		return nil, err
	}
	defer mapped.unmap()

	bf := buffer.NewBufferFileFromBytesNoAlloc(mapped.data)
	pr, err := reader.NewParquetReader(bf, new(parquetRow), 1)
	if err != nil {
		return nil, fmt.Errorf("creating parquet reader for %s: %w", path, err)
	}
	defer pr.ReadStop()

	remaining := int(pr.GetNumRows())
	rows := make([]Row, 0, remaining)
	for remaining > 0 {
		batch := make([]parquetRow, min(remaining, parquetReadBatch))
		if err := pr.Read(&batch); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for _, record := range batch {
			rows = append(rows, Row{
				FileName:  record.FileName,
				Embedding: record.Embedding,
				Label:     int(record.Label),
			})
		}
		remaining -= len(batch)
	}
	return rows, nil
}
