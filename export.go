package brightset

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// exportPageSize is how many task records one export page request asks for.
const exportPageSize = 2500

// ExportTagTasks exports the tag's samples as task records for an external
// annotation tool. Records are opaque and passed through exactly as the
// server returns them, in server order.
func (d *Dataset) ExportTagTasks(ctx context.Context, tagId string) ([]TaskRecord, error) {
	fetch := func(ctx context.Context, limit, offset int) ([]TaskRecord, error) {
		query := url.Values{}
		query.Set("limit", strconv.Itoa(limit))
		query.Set("offset", strconv.Itoa(offset))

		resp, err := doRequest[struct{}, []TaskRecord](
			ctx,
			d.client,
			request[struct{}]{
				method: http.MethodGet,
				path:   d.endpointUrl("/tags/" + tagId + "/export/tasks"),
				query:  query,
			},
		)
		if err != nil {
			return nil, err
		}
		return *resp.body, nil
	}

	tasks, err := collectAll(Paginate(ctx, exportPageSize, fetch))
	if err != nil {
		return nil, fmt.Errorf("export tag tasks: %w", err)
	}
	return tasks, nil
}
