package brightset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoFullImages is returned when an operation needs full-resolution
	// images but the dataset's image type does not provide them.
	ErrNoFullImages = errors.New("dataset does not contain full images")

	// ErrTagNotFound is returned when no tag with the requested name
	// exists in the dataset.
	ErrTagNotFound = errors.New("tag not found")
)

// ListTags returns all tags of the dataset, in server order.
func (d *Dataset) ListTags(ctx context.Context) ([]Tag, error) {
	resp, err := doRequest[struct{}, []Tag](
		ctx,
		d.client,
		request[struct{}]{
			method: http.MethodGet,
			path:   d.endpointUrl("/tags"),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return *resp.body, nil
}

// TagSelection is a tag resolved against the dataset's canonical sample
// order: the decoded member indices plus the sample IDs and filenames
// selected at those indices. The three slices are index-aligned and share
// one length.
type TagSelection struct {
	Tag       Tag
	Indices   []int
	SampleIDs []string
	Filenames []string
}

// ResolveTag resolves a tag name into the selected samples. The dataset
// must contain downloadable full images; that is checked before anything
// else. Tag names are not required to be unique, the first tag returned by
// the server with the given name wins. A malformed tag bitmask is a hard
// error: it indicates corrupted server data, not a recoverable condition.
func (d *Dataset) ResolveTag(ctx context.Context, tagName string) (*TagSelection, error) {
	info, err := d.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info.ImgType != ImageTypeFull {
		return nil, fmt.Errorf("dataset %s has image type %q: %w", d.ID, info.ImgType, ErrNoFullImages)
	}

	tags, err := d.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	var tag *Tag
	for i := range tags {
		if tags[i].Name == tagName {
			tag = &tags[i]
			break
		}
	}
	if tag == nil {
		return nil, fmt.Errorf("dataset %s has no tag named %q: %w", d.ID, tagName, ErrTagNotFound)
	}

	mask, err := BitMaskFromHex(tag.BitMaskData)
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", tag.Name, err)
	}
	indices := mask.ToIndices()

	sampleIds, err := d.SampleIDs(ctx)
	if err != nil {
		return nil, err
	}
	filenames, err := d.Filenames(ctx)
	if err != nil {
		return nil, err
	}

	// The two lists are fetched independently; verify alignment before
	// indexing into them so server-side drift fails fast.
	if len(sampleIds) != len(filenames) {
		return nil, fmt.Errorf(
			"sample ids and filenames are misaligned: %d ids vs %d filenames",
			len(sampleIds), len(filenames),
		)
	}
	if n := len(indices); n > 0 && indices[n-1] >= len(sampleIds) {
		return nil, fmt.Errorf(
			"tag %q references sample index %d but the dataset has %d samples",
			tag.Name, indices[n-1], len(sampleIds),
		)
	}

	selection := &TagSelection{
		Tag:       *tag,
		Indices:   indices,
		SampleIDs: make([]string, 0, len(indices)),
		Filenames: make([]string, 0, len(indices)),
	}
	for _, idx := range indices {
		selection.SampleIDs = append(selection.SampleIDs, sampleIds[idx])
		selection.Filenames = append(selection.Filenames, filenames[idx])
	}
	return selection, nil
}
