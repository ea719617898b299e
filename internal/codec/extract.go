// Package codec extracts binary media assets from provider responses,
// decoding inline base64 payloads and fetching remote URLs when the
// provider returns links instead of bytes.
package codec

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openaiapi "github.com/fargo-family/openai-mcp/internal/api/openai"
	"github.com/fargo-family/openai-mcp/internal/domain"
)

// Extractor turns provider responses into MediaAssets.
type Extractor struct {
	client  *http.Client
	maxSize int64 // Maximum allowed remote asset size in bytes
}

// ExtractorOption configures the extractor.
type ExtractorOption func(*Extractor)

// WithHTTPClient sets a custom HTTP client for remote fetches.
func WithHTTPClient(client *http.Client) ExtractorOption {
	return func(e *Extractor) {
		e.client = client
	}
}

// WithMaxFetchSize sets the maximum allowed remote asset size.
func WithMaxFetchSize(maxSize int64) ExtractorOption {
	return func(e *Extractor) {
		e.maxSize = maxSize
	}
}

// NewExtractor creates a new extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxSize: 50 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ImageAssets extracts every generated image from an image response. Each
// item must carry either inline base64 bytes or a fetchable URL; format
// (default png) determines the content type and extension. A response with
// zero items yields an empty slice, not an error.
func (e *Extractor) ImageAssets(ctx context.Context, resp *openaiapi.ImageGenerationResponse, format string) ([]domain.MediaAsset, error) {
	if resp == nil {
		return nil, domain.ErrMalformedResponse("image response is empty")
	}

	ext, contentType := imageFormatMeta(format)

	assets := make([]domain.MediaAsset, 0, len(resp.Data))
	for i, item := range resp.Data {
		var data []byte
		switch {
		case item.B64JSON != "":
			decoded, err := base64.StdEncoding.DecodeString(item.B64JSON)
			if err != nil {
				return nil, domain.ErrMalformedResponse(fmt.Sprintf("image %d carries invalid base64 payload", i))
			}
			data = decoded
		case item.URL != "":
			fetched, err := e.fetch(ctx, item.URL)
			if err != nil {
				return nil, err
			}
			data = fetched
		default:
			return nil, domain.ErrMalformedResponse(fmt.Sprintf("image %d is missing both b64_json and url", i))
		}

		assets = append(assets, domain.MediaAsset{
			Data:        data,
			ContentType: contentType,
			Kind:        domain.MediaKindImage,
			Extension:   ext,
		})
	}
	return assets, nil
}

// AudioAsset wraps synthesized speech bytes as a single audio asset. The
// requested output format (default mp3) determines content type and
// extension.
func (e *Extractor) AudioAsset(data []byte, format string) domain.MediaAsset {
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	if ext == "" {
		ext = "mp3"
	}
	return domain.MediaAsset{
		Data:        data,
		ContentType: domain.AudioContentType(ext),
		Kind:        domain.MediaKindAudio,
		Extension:   ext,
	}
}

// VideoAssets wraps a downloaded video variant and an optional thumbnail.
// Either slice may be nil when the provider did not include that asset.
func (e *Extractor) VideoAssets(primary []byte, variant domain.VideoVariant, thumbnail []byte) []domain.MediaAsset {
	var assets []domain.MediaAsset
	if len(primary) > 0 {
		ext, contentType := variant.Meta()
		assets = append(assets, domain.MediaAsset{
			Data:        primary,
			ContentType: contentType,
			Kind:        variant.Kind(),
			Extension:   ext,
		})
	}
	if len(thumbnail) > 0 {
		ext, contentType := domain.VideoVariantThumbnail.Meta()
		assets = append(assets, domain.MediaAsset{
			Data:        thumbnail,
			ContentType: contentType,
			Kind:        domain.MediaKindThumbnail,
			Extension:   ext,
		})
	}
	return assets
}

// fetch downloads a remote asset with a size cap.
func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, domain.ErrMalformedResponse(fmt.Sprintf("unsupported asset URL scheme: %s", rawURL))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, domain.ErrUpstream("failed to build asset fetch request", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, domain.ErrUpstream("failed to fetch generated asset", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUpstream(fmt.Sprintf("asset fetch returned status %d", resp.StatusCode), nil)
	}
	if resp.ContentLength > e.maxSize {
		return nil, domain.ErrUpstream(fmt.Sprintf("asset too large: %d bytes (max %d)", resp.ContentLength, e.maxSize), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxSize+1))
	if err != nil {
		return nil, domain.ErrUpstream("failed to read generated asset", err)
	}
	if int64(len(data)) > e.maxSize {
		return nil, domain.ErrUpstream(fmt.Sprintf("asset too large: exceeds %d bytes", e.maxSize), nil)
	}
	return data, nil
}

// imageFormatMeta maps a requested image output format to extension and
// MIME type. Unknown formats fall back to png.
func imageFormatMeta(format string) (ext, contentType string) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "", "png":
		return "png", "image/png"
	case "jpeg", "jpg":
		return "jpeg", "image/jpeg"
	case "webp":
		return "webp", "image/webp"
	default:
		return "png", "image/png"
	}
}
