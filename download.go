package brightset

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultDownloadTag     = "initial-tag"
	defaultDownloadWorkers = 8
)

// DownloadImagesRequest is used for `DownloadImages` calls.
type DownloadImagesRequest struct {
	OutputDir  string
	TagName    *string // Defaults to "initial-tag"
	MaxWorkers *int    // Defaults to 8
	Verbose    *bool   // Defaults to true
}

// DownloadOutcome is the result of downloading a single image. Path is set
// once the destination file has been created; a failed write can therefore
// leave a partial file at Path behind.
type DownloadOutcome struct {
	SampleID string
	Filename string
	Path     string
	Duration time.Duration
	Err      error
}

// DownloadReport collects per-image outcomes of one batch, index-aligned
// with the resolved tag selection.
type DownloadReport struct {
	Outcomes []DownloadOutcome
}

// FailedCount returns how many outcomes carry an error.
func (r *DownloadReport) FailedCount() int {
	failed := 0
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	return failed
}

// FirstFailure returns the index of the first failed outcome in the
// outcomes list, or -1 if everything succeeded. The index is positional in
// the selection order, not the order failures happened in time.
func (r *DownloadReport) FirstFailure() int {
	for i, outcome := range r.Outcomes {
		if outcome.Err != nil {
			return i
		}
	}
	return -1
}

// Percentile returns the p-th percentile (0 < p <= 1) of per-image
// download durations, or zero for an empty report.
func (r *DownloadReport) Percentile(p float64) time.Duration {
	if len(r.Outcomes) == 0 {
		return 0
	}
	durations := make([]float64, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		durations = append(durations, float64(outcome.Duration))
	}
	slices.Sort(durations)
	return time.Duration(stat.Quantile(p, stat.Empirical, durations, nil))
}

// DownloadImages downloads all images of a tag into OutputDir, mirroring
// the filenames' relative paths. The tag is resolved first (image type
// check, tag lookup, bitmask decode, sample selection); any failure there
// aborts before a single download starts and is returned as the error.
//
// Downloads then run on a bounded worker pool, each image exactly once: a
// signed read URL is minted, fetched, decoded and the decoded image
// written beneath OutputDir. A failing image is logged as a warning and
// recorded in the report, and the batch keeps going; per-image failures
// never produce a non-nil error. The batch always runs to completion for
// all items.
func (d *Dataset) DownloadImages(
	ctx context.Context,
	req DownloadImagesRequest,
) (*DownloadReport, error) {
	tagName := defaultDownloadTag
	if req.TagName != nil {
		tagName = *req.TagName
	}
	maxWorkers := defaultDownloadWorkers
	if req.MaxWorkers != nil {
		maxWorkers = *req.MaxWorkers
	}
	verbose := true
	if req.Verbose != nil {
		verbose = *req.Verbose
	}

	selection, err := d.ResolveTag(ctx, tagName)
	if err != nil {
		return nil, err
	}

	total := len(selection.SampleIDs)
	report := &DownloadReport{Outcomes: make([]DownloadOutcome, total)}
	if total == 0 {
		return report, nil
	}

	var (
		logger  = d.client.logger
		workers = clampWorkers(maxWorkers, total)
	)
	if verbose {
		logger.Info("downloading images",
			slog.String("dataset", d.ID),
			slog.String("tag", selection.Tag.Name),
			slog.Int("images", total),
			slog.Int("workers", workers),
		)
	}

	var bar *progressbar.ProgressBar
	if verbose {
		bar = progressbar.Default(int64(total), "downloading images")
	}

	var completed atomic.Int64
	eg := new(errgroup.Group)
	eg.SetLimit(workers)
	for i := range total {
		eg.Go(func() error {
			start := time.Now()
			outcome := DownloadOutcome{
				SampleID: selection.SampleIDs[i],
				Filename: selection.Filenames[i],
			}
			outcome.Path, outcome.Err = d.downloadImage(
				ctx,
				outcome.SampleID,
				req.OutputDir,
				outcome.Filename,
			)
			outcome.Duration = time.Since(start)
			if outcome.Err != nil {
				logger.Warn("downloading image failed",
					slog.String("filename", outcome.Filename),
					slog.String("error", outcome.Err.Error()),
				)
			}
			report.Outcomes[i] = outcome
			completed.Add(1)
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	// Workers record failures in the report instead of returning them, so
	// the group never short-circuits.
	_ = eg.Wait()

	if failed := report.FailedCount(); failed > 0 {
		logger.Warn("some image downloads failed",
			slog.Int("failed", failed),
			slog.Int64("completed", completed.Load()),
			slog.Int("first_failed_index", report.FirstFailure()),
		)
	}
	return report, nil
}

// clampWorkers bounds the worker count to the number of items, and to a
// minimum of one.
func clampWorkers(requested, items int) int {
	return max(1, min(requested, items))
}

// downloadImage fetches one sample's full-resolution image and writes it
// beneath outputDir at the sample's filename, creating intermediate
// directories as needed. Returns the destination path once the file has
// been created.
func (d *Dataset) downloadImage(
	ctx context.Context,
	sampleId string,
	outputDir string,
	filename string,
) (string, error) {
	signedUrl, err := d.SampleImageReadURL(ctx, sampleId, ImageVariantFull)
	if err != nil {
		return "", err
	}

	body, err := d.client.fetchSignedURL(ctx, signedUrl)
	if err != nil {
		return "", fmt.Errorf("fetching image: %w", err)
	}
	defer body.Close()

	img, format, err := image.Decode(body)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	dest := filepath.Join(outputDir, filename)
	// Concurrent workers may create the same directory; MkdirAll treats an
	// existing directory as success.
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", filepath.Dir(dest), err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := encodeImage(f, img, format); err != nil {
		f.Close()
		return dest, fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return dest, fmt.Errorf("closing %s: %w", dest, err)
	}
	return dest, nil
}

// encodeImage re-encodes a decoded image in its source format.
func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg":
		return jpeg.Encode(w, img, nil)
	case "png":
		return png.Encode(w, img)
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
}
