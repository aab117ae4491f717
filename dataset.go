package brightset

import (
	"context"
	"fmt"
	"net/http"
)

// Dataset is a lightweight wrapper around a `Client` that allows the
// caller to interact with a specific dataset. All dataset-scoped
// operations (tags, samples, downloads, embeddings, exports) hang off it.
type Dataset struct {
	client *Client
	ID     string
}

// Dataset creates a new `Dataset` handle from a `Client`.
func (c *Client) Dataset(id string) *Dataset {
	return &Dataset{
		client: c,
		ID:     id,
	}
}

// Info retrieves the dataset's metadata.
func (d *Dataset) Info(ctx context.Context) (*DatasetInfo, error) {
	resp, err := doRequest[struct{}, DatasetInfo](
		ctx,
		d.client,
		request[struct{}]{
			method: http.MethodGet,
			path:   d.endpointUrl(""),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return resp.body, nil
}

func (d *Dataset) endpointUrl(path string) string {
	return fmt.Sprintf("/v1/datasets/%s%s", d.ID, path)
}
