package brightset

import (
	"context"
	"iter"
)

// PageFunc fetches one page of records: up to limit records starting at
// offset, in server order.
type PageFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// Paginate lazily yields all records of a paginated endpoint. Pages are
// requested sequentially starting at offset 0, advancing the offset by the
// number of records returned; a page with fewer than pageSize records ends
// the sequence. Server order is preserved, nothing is deduplicated or
// sorted. A fetch error is yielded once (with a zero record) and ends the
// sequence. Ranging over the result again restarts from offset 0.
func Paginate[T any](ctx context.Context, pageSize int, fetch PageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		offset := 0
		for {
			page, err := fetch(ctx, pageSize, offset)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, record := range page {
				if !yield(record, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			offset += len(page)
		}
	}
}

// collectAll drains a paginated sequence into a slice, stopping at the
// first error.
func collectAll[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var records []T
	for record, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
