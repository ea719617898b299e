package domain

// Capability identifies one provider function exposed as a tool.
type Capability string

const (
	CapabilityChat  Capability = "chat"
	CapabilityImage Capability = "image"
	CapabilityAudio Capability = "audio"
	CapabilityVideo Capability = "video"
)

// Capabilities lists every capability in a stable order.
func Capabilities() []Capability {
	return []Capability{CapabilityChat, CapabilityImage, CapabilityAudio, CapabilityVideo}
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityChat, CapabilityImage, CapabilityAudio, CapabilityVideo:
		return true
	}
	return false
}

// MediaKind classifies a binary asset, driving its storage folder and
// content type.
type MediaKind string

const (
	MediaKindImage     MediaKind = "image"
	MediaKindAudio     MediaKind = "audio"
	MediaKindVideo     MediaKind = "video"
	MediaKindThumbnail MediaKind = "thumbnail"
)

// DefaultRoot returns the default storage root folder for the media kind.
// Thumbnails share the video folder with their parent clip.
func (k MediaKind) DefaultRoot() string {
	switch k {
	case MediaKindImage:
		return "images"
	case MediaKindAudio:
		return "audio"
	case MediaKindVideo, MediaKindThumbnail:
		return "videos"
	default:
		return "media"
	}
}

// DefaultContentType is returned when no more specific MIME type is known.
const DefaultContentType = "application/octet-stream"

// audioContentTypes maps requested audio output formats to MIME types.
var audioContentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"flac": "audio/flac",
	"opus": "audio/ogg",
	"ogg":  "audio/ogg",
	"aac":  "audio/aac",
	"m4a":  "audio/mp4",
}

// AudioContentType resolves the MIME type for a requested audio format.
func AudioContentType(format string) string {
	if ct, ok := audioContentTypes[format]; ok {
		return ct
	}
	return DefaultContentType
}

// VideoVariant identifies a downloadable asset of a completed video job.
type VideoVariant string

const (
	VideoVariantVideo       VideoVariant = "video"
	VideoVariantThumbnail   VideoVariant = "thumbnail"
	VideoVariantSpritesheet VideoVariant = "spritesheet"
)

// Meta returns the file extension and MIME type for the variant. The
// provider serves the spritesheet variant as JSON, not as an image.
func (v VideoVariant) Meta() (ext, contentType string) {
	switch v {
	case VideoVariantVideo:
		return "mp4", "video/mp4"
	case VideoVariantThumbnail:
		return "jpg", "image/jpeg"
	case VideoVariantSpritesheet:
		return "json", "application/json"
	default:
		return "bin", DefaultContentType
	}
}

// Kind returns the media kind an asset of this variant is stored under.
func (v VideoVariant) Kind() MediaKind {
	if v == VideoVariantThumbnail {
		return MediaKindThumbnail
	}
	return MediaKindVideo
}

// MediaAsset is the in-memory result of extracting one binary payload from a
// provider response. It is owned by the request that extracted it and is
// discarded after upload.
type MediaAsset struct {
	Data        []byte
	ContentType string
	Kind        MediaKind
	Extension   string
}

// AssetRef is the only shape in which media reaches a tool caller: a public
// blob URL plus classification, never raw bytes.
type AssetRef struct {
	BlobURL     string    `json:"blob_url"`
	ContentType string    `json:"content_type"`
	MediaKind   MediaKind `json:"media_kind"`
}
