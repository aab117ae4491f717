package embeddings

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ProjectTo2D reduces rows' embeddings to two dimensions with a principal
// component projection, typically ahead of scatter plotting. Filenames
// and labels are preserved. Requires at least two rows and at least two
// dimensions.
func ProjectTo2D(rows []Row) ([]Row, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("projecting embeddings: need at least 2 rows, have %d", len(rows))
	}
	dims := len(rows[0].Embedding)
	if dims < 2 {
		return nil, fmt.Errorf("projecting embeddings: need at least 2 dimensions, have %d", dims)
	}

	data := mat.NewDense(len(rows), dims, nil)
	for i, row := range rows {
		if len(row.Embedding) != dims {
			return nil, fmt.Errorf("projecting embeddings: row %d has %d dimensions, want %d", i, len(row.Embedding), dims)
		}
		for j, v := range row.Embedding {
			data.Set(i, j, float64(v))
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("projecting embeddings: principal component analysis failed")
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	// Principal components describe directions around the mean, so center
	// the data before projecting onto the top two.
	centered := mat.NewDense(len(rows), dims, nil)
	for j := range dims {
		column := mat.Col(nil, j, data)
		mean := stat.Mean(column, nil)
		for i := range len(rows) {
			centered.Set(i, j, column[i]-mean)
		}
	}

	var projected mat.Dense
	projected.Mul(centered, vectors.Slice(0, dims, 0, 2))

	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = Row{
			FileName:  row.FileName,
			Embedding: []float32{float32(projected.At(i, 0)), float32(projected.At(i, 1))},
			Label:     row.Label,
		}
	}
	return out, nil
}
