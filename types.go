package brightset

// ImageType describes what image data a dataset stores. Only datasets of
// type `full` have full-resolution images available for download.
type ImageType string

const (
	ImageTypeFull       ImageType = "full"
	ImageTypeThumbnails ImageType = "thumbnails"
	ImageTypeMeta       ImageType = "meta"
)

// DatasetInfo is the server-side metadata of one dataset. Timestamps are
// unix milliseconds.
type DatasetInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ImgType        ImageType `json:"img_type"`
	NSamples       int64     `json:"n_samples"`
	SizeInBytes    int64     `json:"size_in_bytes"`
	CreatedAt      int64     `json:"created_at"`
	LastModifiedAt int64     `json:"last_modified_at"`
}

// Tag is a named subset of a dataset's samples. Membership is encoded in
// BitMaskData: bit i set means the i-th sample in the dataset's canonical
// order belongs to the tag.
type Tag struct {
	ID          string  `json:"id"`
	DatasetID   string  `json:"dataset_id"`
	PrevTagID   *string `json:"prev_tag_id,omitempty"`
	Name        string  `json:"name"`
	BitMaskData string  `json:"bit_mask_data"`
	TotSize     int     `json:"tot_size"`
	CreatedAt   int64   `json:"created_at"`
}

// DatasetEmbedding describes one embedding computed for a dataset. A
// dataset may carry several; see LatestDefaultEmbedding for how the
// implicit "primary" one is picked.
type DatasetEmbedding struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatedAt   int64  `json:"created_at"`
	IsProcessed bool   `json:"is_processed"`
	Is2D        bool   `json:"is_2d"`
}

// ImageVariant selects which stored rendition of a sample image a read URL
// grants access to.
type ImageVariant string

const (
	ImageVariantFull      ImageVariant = "full"
	ImageVariantThumbnail ImageVariant = "thumbnail"
)

// TaskRecord is one exported annotation task, passed through exactly as
// returned by the server.
type TaskRecord map[string]any

type signedUrlResponse struct {
	SignedUrl string `json:"signed_url"`
}

// A helper to return a reference to a value.
func AsRef[T any](v T) *T {
	return &v
}
