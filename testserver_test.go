package brightset

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakePlatform is an in-memory stand-in for the Brightset API plus the
// object store its signed URLs point at, served from a single listener.
type fakePlatform struct {
	srv *httptest.Server

	dataset    DatasetInfo
	tags       []Tag
	sampleIds  []string
	filenames  []string
	embeddings []DatasetEmbedding
	tasks      []TaskRecord
	images     map[string][]byte // sample id -> image bytes
	csvBlobs   map[string][]byte // embedding id -> csv bytes

	tagsCalls       atomic.Int64
	mappingsCalls   atomic.Int64
	readUrlCalls    atomic.Int64
	exportCalls     atomic.Int64
	objectCalls     atomic.Int64
	badVariantCalls atomic.Int64
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	p := &fakePlatform{
		dataset:  DatasetInfo{ID: "ds-1", Name: "test dataset", ImgType: ImageTypeFull},
		images:   make(map[string][]byte),
		csvBlobs: make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/datasets/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.dataset)
	})
	mux.HandleFunc("GET /v1/datasets/{id}/tags", func(w http.ResponseWriter, r *http.Request) {
		p.tagsCalls.Add(1)
		writeJSON(w, p.tags)
	})
	mux.HandleFunc("GET /v1/datasets/{id}/mappings", func(w http.ResponseWriter, r *http.Request) {
		p.mappingsCalls.Add(1)
		source := p.sampleIds
		if r.URL.Query().Get("field") == "file_name" {
			source = p.filenames
		}
		writeJSON(w, pageOf(source, r))
	})
	mux.HandleFunc("GET /v1/datasets/{id}/samples/{sampleId}/readurl", func(w http.ResponseWriter, r *http.Request) {
		p.readUrlCalls.Add(1)
		if r.URL.Query().Get("type") != string(ImageVariantFull) {
			p.badVariantCalls.Add(1)
		}
		writeJSON(w, signedUrlResponse{
			SignedUrl: p.srv.URL + "/objects/images/" + r.PathValue("sampleId") + "?sig=stub",
		})
	})
	mux.HandleFunc("GET /v1/datasets/{id}/embeddings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, p.embeddings)
	})
	mux.HandleFunc("GET /v1/datasets/{id}/embeddings/{embeddingId}/readurl", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, signedUrlResponse{
			SignedUrl: p.srv.URL + "/objects/embeddings/" + r.PathValue("embeddingId") + "?sig=stub",
		})
	})
	mux.HandleFunc("GET /v1/datasets/{id}/tags/{tagId}/export/tasks", func(w http.ResponseWriter, r *http.Request) {
		p.exportCalls.Add(1)
		writeJSON(w, pageOf(p.tasks, r))
	})
	mux.HandleFunc("GET /objects/images/{sampleId}", func(w http.ResponseWriter, r *http.Request) {
		p.objectCalls.Add(1)
		body, ok := p.images[r.PathValue("sampleId")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	})
	mux.HandleFunc("GET /objects/embeddings/{embeddingId}", func(w http.ResponseWriter, r *http.Request) {
		p.objectCalls.Add(1)
		body, ok := p.csvBlobs[r.PathValue("embeddingId")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	})

	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePlatform) client(t *testing.T, options ...ClientOptions) *Client {
	t.Helper()
	options = append([]ClientOptions{
		WithBaseURL(p.srv.URL),
		WithHTTPClient(p.srv.Client()),
	}, options...)
	return NewClient("test-token", options...)
}

// pageOf applies the limit/offset query parameters to records.
func pageOf[T any](records []T, r *http.Request) []T {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset >= len(records) {
		return []T{}
	}
	return records[offset:min(offset+limit, len(records))]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// pngImage encodes a tiny solid-color PNG.
func pngImage(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
