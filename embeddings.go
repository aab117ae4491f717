package brightset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

var (
	// ErrEmbeddingNotFound is returned when no embedding with the
	// requested name exists in the dataset.
	ErrEmbeddingNotFound = errors.New("embedding not found")

	// ErrNoDefaultEmbedding is returned when the dataset has no embedding
	// whose name carries the default prefix.
	ErrNoDefaultEmbedding = errors.New("dataset has no default embedding")
)

// Server-generated embeddings are named with this prefix; user-uploaded
// ones are not.
const defaultEmbeddingNamePrefix = "default"

// ListEmbeddings returns the dataset's embedding descriptors, unordered as
// returned by the server.
func (d *Dataset) ListEmbeddings(ctx context.Context) ([]DatasetEmbedding, error) {
	resp, err := doRequest[struct{}, []DatasetEmbedding](
		ctx,
		d.client,
		request[struct{}]{
			method: http.MethodGet,
			path:   d.endpointUrl("/embeddings"),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	return *resp.body, nil
}

// EmbeddingByName returns the embedding whose name matches exactly.
func (d *Dataset) EmbeddingByName(ctx context.Context, name string) (*DatasetEmbedding, error) {
	embeddings, err := d.ListEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	for i := range embeddings {
		if embeddings[i].Name == name {
			return &embeddings[i], nil
		}
	}
	return nil, fmt.Errorf("dataset %s has no embedding named %q: %w", d.ID, name, ErrEmbeddingNotFound)
}

// LatestDefaultEmbedding picks the embedding with the default name prefix
// and the highest creation timestamp. ok is false when none qualifies;
// that is an expected state for datasets without server-generated
// embeddings, not an error.
func LatestDefaultEmbedding(embeddings []DatasetEmbedding) (latest DatasetEmbedding, ok bool) {
	for _, embedding := range embeddings {
		if !strings.HasPrefix(embedding.Name, defaultEmbeddingNamePrefix) {
			continue
		}
		if !ok || embedding.CreatedAt > latest.CreatedAt {
			latest = embedding
			ok = true
		}
	}
	return latest, ok
}

// EmbeddingsCSVReadURL mints a signed, short-lived read URL for one
// embedding's CSV blob.
func (d *Dataset) EmbeddingsCSVReadURL(ctx context.Context, embeddingId string) (string, error) {
	resp, err := doRequest[struct{}, signedUrlResponse](
		ctx,
		d.client,
		request[struct{}]{
			method: http.MethodGet,
			path:   d.endpointUrl("/embeddings/" + embeddingId + "/readurl"),
		},
	)
	if err != nil {
		return "", fmt.Errorf("mint embeddings csv read url: %w", err)
	}
	return resp.body.SignedUrl, nil
}

// DownloadEmbeddingsCSVByID downloads one embedding's CSV to destPath,
// overwriting any existing file.
func (d *Dataset) DownloadEmbeddingsCSVByID(ctx context.Context, embeddingId, destPath string) error {
	signedUrl, err := d.EmbeddingsCSVReadURL(ctx, embeddingId)
	if err != nil {
		return err
	}

	body, err := d.client.fetchSignedURL(ctx, signedUrl)
	if err != nil {
		return fmt.Errorf("downloading embeddings csv: %w", err)
	}
	defer body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	if _, err := f.ReadFrom(body); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", destPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destPath, err)
	}
	return nil
}

// DownloadEmbeddingsCSV downloads the latest default embedding's CSV to
// destPath, overwriting any existing file. Fails with
// ErrNoDefaultEmbedding when the dataset has none.
func (d *Dataset) DownloadEmbeddingsCSV(ctx context.Context, destPath string) error {
	embeddings, err := d.ListEmbeddings(ctx)
	if err != nil {
		return err
	}
	latest, ok := LatestDefaultEmbedding(embeddings)
	if !ok {
		return fmt.Errorf("dataset %s: %w", d.ID, ErrNoDefaultEmbedding)
	}
	return d.DownloadEmbeddingsCSVByID(ctx, latest.ID, destPath)
}
