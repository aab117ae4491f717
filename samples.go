package brightset

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// mappingsPageSize is how many records one mappings page request asks for.
const mappingsPageSize = 25000

// SampleIDs returns the dataset's full sample ID list in canonical order.
// Index-aligned with Filenames: position i in both lists refers to the
// same underlying sample.
func (d *Dataset) SampleIDs(ctx context.Context) ([]string, error) {
	ids, err := collectAll(Paginate(ctx, mappingsPageSize, d.mappingsPage("_id")))
	if err != nil {
		return nil, fmt.Errorf("list sample ids: %w", err)
	}
	return ids, nil
}

// Filenames returns the dataset's full filename list in canonical order.
func (d *Dataset) Filenames(ctx context.Context) ([]string, error) {
	filenames, err := collectAll(Paginate(ctx, mappingsPageSize, d.mappingsPage("file_name")))
	if err != nil {
		return nil, fmt.Errorf("list filenames: %w", err)
	}
	return filenames, nil
}

// mappingsPage fetches one page of the mappings endpoint, which projects a
// single field of every sample in canonical order.
func (d *Dataset) mappingsPage(field string) PageFunc[string] {
	return func(ctx context.Context, limit, offset int) ([]string, error) {
		query := url.Values{}
		query.Set("field", field)
		query.Set("limit", strconv.Itoa(limit))
		query.Set("offset", strconv.Itoa(offset))

		resp, err := doRequest[struct{}, []string](
			ctx,
			d.client,
			request[struct{}]{
				method: http.MethodGet,
				path:   d.endpointUrl("/mappings"),
				query:  query,
			},
		)
		if err != nil {
			return nil, err
		}
		return *resp.body, nil
	}
}

// SampleImageReadURL mints a signed, short-lived read URL for one sample's
// image. The URL grants anonymous read access to that single object and is
// minted fresh on every call, never cached.
func (d *Dataset) SampleImageReadURL(
	ctx context.Context,
	sampleId string,
	variant ImageVariant,
) (string, error) {
	query := url.Values{}
	query.Set("type", string(variant))

	resp, err := doRequest[struct{}, signedUrlResponse](
		ctx,
		d.client,
		request[struct{}]{
			method: http.MethodGet,
			path:   d.endpointUrl("/samples/" + sampleId + "/readurl"),
			query:  query,
		},
	)
	if err != nil {
		return "", fmt.Errorf("mint image read url: %w", err)
	}
	return resp.body.SignedUrl, nil
}
