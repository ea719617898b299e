package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	openaiapi "github.com/fargo-family/openai-mcp/internal/api/openai"
	"github.com/fargo-family/openai-mcp/internal/domain"
)

var (
	allowedImageSizes     = map[string]bool{"1024x1024": true, "1024x1536": true, "1536x1024": true, "auto": true}
	allowedImageQualities = map[string]bool{"low": true, "medium": true, "high": true, "auto": true}

	// Legacy DALL·E quality names accepted for compatibility.
	legacyQualityAliases = map[string]string{"standard": "medium", "hd": "high"}

	allowedVideoSeconds = map[int]bool{4: true, 8: true, 12: true}
)

// ImageRequest carries the arguments of the generate_image tool.
type ImageRequest struct {
	Prompt  string
	Size    string
	Quality string
	Format  string
	Count   int
	User    string
}

// GeneratedImage is one uploaded image variation.
type GeneratedImage struct {
	domain.AssetRef
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// ImageResult is the generate_image tool result.
type ImageResult struct {
	Model   string           `json:"model"`
	Created int64            `json:"created"`
	Images  []GeneratedImage `json:"images"`
}

// GenerateImage renders one or more image variations, uploads each to blob
// storage, and returns their public URLs.
func (s *Service) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrInvalidRequest("prompt must not be empty")
	}

	count := req.Count
	if count == 0 {
		count = 1
	}
	if count < 1 || count > 10 {
		return nil, domain.ErrInvalidRequest("count must be between 1 and 10")
	}

	size := strings.ToLower(req.Size)
	if size == "" {
		size = "1024x1024"
	}
	if !allowedImageSizes[size] {
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("size must be one of 1024x1024, 1024x1536, 1536x1024, auto (received: %q)", req.Size))
	}

	quality := strings.ToLower(req.Quality)
	if quality == "" {
		quality = "high"
	}
	if alias, ok := legacyQualityAliases[quality]; ok {
		quality = alias
	}
	if !allowedImageQualities[quality] {
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("quality must be one of auto, high, low, medium (received: %q)", req.Quality))
	}

	format := strings.ToLower(req.Format)
	if format == "jpg" {
		format = "jpeg"
	}
	switch format {
	case "", "png", "jpeg", "webp":
	default:
		return nil, domain.ErrInvalidRequest(fmt.Sprintf("format must be one of png, jpeg, webp (received: %q)", req.Format))
	}

	resp, err := s.client.GenerateImage(ctx, &openaiapi.ImageGenerationRequest{
		Model:        s.cfg.OpenAI.ImageModel,
		Prompt:       req.Prompt,
		Size:         size,
		Quality:      quality,
		OutputFormat: format,
		N:            count,
		User:         req.User,
	})
	if err != nil {
		return nil, domain.ErrUpstream("image generation failed", err)
	}

	assets, err := s.extractor.ImageAssets(ctx, resp, format)
	if err != nil {
		return nil, err
	}

	refs, err := s.persistAll(ctx, assets)
	if err != nil {
		return nil, err
	}

	images := make([]GeneratedImage, len(refs))
	for i, ref := range refs {
		images[i] = GeneratedImage{AssetRef: ref}
		if i < len(resp.Data) {
			images[i].RevisedPrompt = resp.Data[i].RevisedPrompt
		}
	}

	model := resp.Model
	if model == "" {
		model = s.cfg.OpenAI.ImageModel
	}
	s.logger.Info("generated images",
		slog.String("model", model),
		slog.Int("count", len(images)),
	)
	return &ImageResult{
		Model:   model,
		Created: resp.Created,
		Images:  images,
	}, nil
}

// SpeechRequest carries the arguments of the synthesize_speech tool.
type SpeechRequest struct {
	Text   string
	Model  string
	Voice  string
	Format string
	Speed  float64
}

// SpeechResult is the synthesize_speech tool result.
type SpeechResult struct {
	domain.AssetRef
	Voice      string `json:"voice"`
	Format     string `json:"format"`
	ByteLength int    `json:"byte_length"`
}

// SynthesizeSpeech converts text into audio, uploads it, and returns the
// public URL.
func (s *Service) SynthesizeSpeech(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrInvalidRequest("text must not be empty")
	}

	model := req.Model
	if model == "" {
		model = s.cfg.OpenAI.AudioModel
	}
	voice := req.Voice
	if voice == "" {
		voice = s.cfg.OpenAI.DefaultVoice
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = "mp3"
	}
	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	audio, err := s.client.CreateSpeech(ctx, &openaiapi.SpeechRequest{
		Model:          model,
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: format,
		Speed:          speed,
	})
	if err != nil {
		return nil, domain.ErrUpstream("speech synthesis failed", err)
	}

	asset := s.extractor.AudioAsset(audio, format)
	refs, err := s.persistAll(ctx, []domain.MediaAsset{asset})
	if err != nil {
		return nil, err
	}

	s.logger.Info("synthesized speech",
		slog.String("voice", voice),
		slog.String("format", format),
		slog.Int("bytes", len(audio)),
	)
	return &SpeechResult{
		AssetRef:   refs[0],
		Voice:      voice,
		Format:     format,
		ByteLength: len(audio),
	}, nil
}

// VideoRequest carries the arguments of the generate_video tool.
type VideoRequest struct {
	Prompt  string
	Model   string
	Seconds int
	Size    string
	Variant string
}

// VideoResult is the generate_video tool result.
type VideoResult struct {
	VideoID string            `json:"video_id"`
	Status  string            `json:"status"`
	Model   string            `json:"model"`
	Size    string            `json:"size,omitempty"`
	Seconds string            `json:"seconds,omitempty"`
	Variant string            `json:"variant"`
	Assets  []domain.AssetRef `json:"assets"`
}

// GenerateVideo submits a video job, polls it to completion, downloads the
// requested asset variant (plus a thumbnail when available), uploads the
// results, and returns their public URLs. Azure deployments do not expose
// the video endpoint, so Azure mode fails before any network call.
func (s *Service) GenerateVideo(ctx context.Context, req VideoRequest) (*VideoResult, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	if s.cfg.OpenAI.IsAzure() {
		return nil, domain.ErrUnsupportedCapability("video generation is not available on Azure OpenAI deployments")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, domain.ErrInvalidRequest("prompt must not be empty")
	}

	seconds := req.Seconds
	if seconds == 0 {
		seconds = 4
	}
	if !allowedVideoSeconds[seconds] {
		return nil, domain.ErrInvalidRequest("seconds must be one of 4, 8, or 12")
	}

	variant := domain.VideoVariant(strings.ToLower(req.Variant))
	if variant == "" {
		variant = domain.VideoVariantVideo
	}
	switch variant {
	case domain.VideoVariantVideo, domain.VideoVariantThumbnail, domain.VideoVariantSpritesheet:
	default:
		return nil, domain.ErrInvalidRequest("variant must be video, thumbnail, or spritesheet")
	}

	model := req.Model
	if model == "" {
		model = s.cfg.OpenAI.VideoModel
	}
	size := req.Size
	if size == "" {
		size = "720x1280"
	}

	job, err := s.client.CreateVideo(ctx, &openaiapi.VideoGenerationRequest{
		Model:   model,
		Prompt:  req.Prompt,
		Seconds: strconv.Itoa(seconds),
		Size:    size,
	})
	if err != nil {
		return nil, domain.ErrUpstream("video job submission failed", err)
	}

	job, err = s.client.WaitForVideo(ctx, job.ID)
	if err != nil {
		return nil, domain.ErrUpstream("video job polling failed", err)
	}
	if job.Status != openaiapi.VideoStatusCompleted {
		msg := fmt.Sprintf("video job %s did not complete successfully (status=%s)", job.ID, job.Status)
		if job.Error != nil && job.Error.Message != "" {
			msg += ": " + job.Error.Message
		}
		return nil, domain.ErrUpstream(msg, nil)
	}

	primary, err := s.client.DownloadVideoContent(ctx, job.ID, string(variant))
	if err != nil {
		return nil, domain.ErrUpstream("video asset download failed", err)
	}

	// The thumbnail is optional: a failed download means the provider did
	// not include one for this job.
	var thumbnail []byte
	if variant == domain.VideoVariantVideo {
		thumbnail, err = s.client.DownloadVideoContent(ctx, job.ID, string(domain.VideoVariantThumbnail))
		if err != nil {
			s.logger.Debug("no thumbnail available for video job",
				slog.String("video_id", job.ID),
				slog.Any("error", err),
			)
			thumbnail = nil
		}
	}

	assets := s.extractor.VideoAssets(primary, variant, thumbnail)
	refs, err := s.persistAll(ctx, assets)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generated video",
		slog.String("video_id", job.ID),
		slog.String("model", job.Model),
		slog.String("variant", string(variant)),
		slog.Int("assets", len(refs)),
	)
	return &VideoResult{
		VideoID: job.ID,
		Status:  job.Status,
		Model:   job.Model,
		Size:    job.Size,
		Seconds: job.Seconds,
		Variant: string(variant),
		Assets:  refs,
	}, nil
}
