package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/go-flac/flacpicture"
	goflac "github.com/go-flac/go-flac"
	"github.com/nfnt/resize"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"

	"cratekeeper/src/features/config"
)

// Exporter pulls embedded cover art out of audio files and writes it
// next to them in the library.
type Exporter struct {
	config *config.Manager
}

// NewExporter creates a new artwork exporter.
func NewExporter(config *config.Manager) *Exporter {
	return &Exporter{config: config}
}

// Export writes the cover embedded in audioPath into destDir under the
// configured filename. It returns the written path, or the empty
// string when the file carries no usable cover or one is already
// present.
func (e *Exporter) Export(ctx context.Context, audioPath, destDir string) (string, error) {
	cfg := e.config.Get()
	filename := cfg.Artwork.Filename
	if filename == "" {
		filename = "cover.jpg"
	}
	localPath := filepath.Join(destDir, filename)
	if _, err := os.Stat(localPath); err == nil {
		slog.Debug("Cover already present", "path", localPath)
		return "", nil
	}

	data, err := embeddedCover(audioPath)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		slog.Debug("No embedded cover found", "path", audioPath)
		return "", nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode cover image: %w", err)
	}

	if cfg.Artwork.MaxSize > 0 {
		bounds := img.Bounds()
		if bounds.Dx() > cfg.Artwork.MaxSize || bounds.Dy() > cfg.Artwork.MaxSize {
			img = resize.Resize(uint(cfg.Artwork.MaxSize), uint(cfg.Artwork.MaxSize), img, resize.Lanczos3)
		}
	}

	outFile, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create artwork file: %w", err)
	}
	defer outFile.Close()

	if err := jpeg.Encode(outFile, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode artwork image: %w", err)
	}

	slog.Info("Saved local artwork", "path", localPath, "from", audioPath)
	return localPath, nil
}

// embeddedCover returns the raw bytes of the cover embedded in the
// audio file, preferring the FLAC front cover block when there is one.
func embeddedCover(audioPath string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(audioPath)) == ".flac" {
		return flacCover(audioPath)
	}
	return taggedCover(audioPath)
}

// flacCover scans the PICTURE metadata blocks of a FLAC file. The
// front cover wins; otherwise the first parseable picture is used.
func flacCover(audioPath string) ([]byte, error) {
	f, err := goflac.ParseFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var first []byte
	for _, meta := range f.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil {
			slog.Debug("Skipping unparseable picture block", "path", audioPath, "error", err)
			continue
		}
		if pic.PictureType == flacpicture.PictureTypeFrontCover {
			return pic.ImageData, nil
		}
		if first == nil {
			first = pic.ImageData
		}
	}
	return first, nil
}

// taggedCover reads the attached picture of any format dhowden/tag
// understands.
func taggedCover(audioPath string) ([]byte, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	pic := meta.Picture()
	if pic == nil {
		return nil, nil
	}
	return pic.Data, nil
}
