package brightset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightset/brightset-go/pkg/embeddings"
)

func TestLatestDefaultEmbedding(t *testing.T) {
	embs := []DatasetEmbedding{
		{ID: "e1", Name: "default_a", CreatedAt: 100},
		{ID: "e2", Name: "default_b", CreatedAt: 200},
		{ID: "e3", Name: "custom", CreatedAt: 900},
	}
	latest, ok := LatestDefaultEmbedding(embs)
	require.True(t, ok)
	assert.Equal(t, "default_b", latest.Name)
}

func TestLatestDefaultEmbeddingAbsent(t *testing.T) {
	_, ok := LatestDefaultEmbedding(nil)
	assert.False(t, ok)

	_, ok = LatestDefaultEmbedding([]DatasetEmbedding{{ID: "e1", Name: "custom", CreatedAt: 1}})
	assert.False(t, ok, "user-named embeddings are never defaults")
}

func TestEmbeddingByName(t *testing.T) {
	p := newFakePlatform(t)
	p.embeddings = []DatasetEmbedding{
		{ID: "e1", Name: "default_20240101", CreatedAt: 100},
		{ID: "e2", Name: "clip-vit", CreatedAt: 200},
	}
	ds := p.client(t).Dataset("ds-1")

	embedding, err := ds.EmbeddingByName(t.Context(), "clip-vit")
	require.NoError(t, err)
	assert.Equal(t, "e2", embedding.ID)

	_, err = ds.EmbeddingByName(t.Context(), "clip")
	require.ErrorIs(t, err, ErrEmbeddingNotFound, "name matching is exact, not prefix")
}

func TestDownloadEmbeddingsCSV(t *testing.T) {
	p := newFakePlatform(t)
	p.embeddings = []DatasetEmbedding{
		{ID: "e1", Name: "default_20240101", CreatedAt: 100, IsProcessed: true},
		{ID: "e2", Name: "default_20240301", CreatedAt: 200, IsProcessed: true},
		{ID: "e3", Name: "experimental", CreatedAt: 900},
	}
	csvBody := "filenames,embedding_0,embedding_1,labels\nimg0.png,0.25,-1.5,0\nimg1.png,0.125,2,7\n"
	p.csvBlobs["e2"] = []byte(csvBody)

	dest := filepath.Join(t.TempDir(), "embeddings.csv")
	require.NoError(t, os.WriteFile(dest, []byte("stale contents"), 0644))

	ds := p.client(t).Dataset("ds-1")
	require.NoError(t, ds.DownloadEmbeddingsCSV(t.Context(), dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data), "existing files are overwritten, not appended")

	rows, err := embeddings.ReadCSV(dest)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "img0.png", rows[0].FileName)
	assert.Equal(t, []float32{0.25, -1.5}, rows[0].Embedding)
	assert.Equal(t, 0, rows[0].Label)
	assert.Equal(t, []float32{0.125, 2}, rows[1].Embedding)
	assert.Equal(t, 7, rows[1].Label)
}

func TestDownloadEmbeddingsCSVNoDefault(t *testing.T) {
	p := newFakePlatform(t)
	p.embeddings = []DatasetEmbedding{{ID: "e1", Name: "experimental", CreatedAt: 900}}

	err := p.client(t).Dataset("ds-1").DownloadEmbeddingsCSV(t.Context(), filepath.Join(t.TempDir(), "out.csv"))
	require.ErrorIs(t, err, ErrNoDefaultEmbedding)
	assert.EqualValues(t, 0, p.objectCalls.Load(), "no blob fetch without a default embedding")
}

func TestDownloadEmbeddingsCSVByID(t *testing.T) {
	p := newFakePlatform(t)
	p.csvBlobs["e7"] = []byte("filenames,embedding_0,labels\nimg.png,1,0\n")

	dest := filepath.Join(t.TempDir(), "by-id.csv")
	require.NoError(t, p.client(t).Dataset("ds-1").DownloadEmbeddingsCSVByID(t.Context(), "e7", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, p.csvBlobs["e7"], data)
}
