// Package config loads and validates gateway configuration from the
// environment, with an optional YAML file as a base layer. All values are
// resolved once at process start; the resulting Config is immutable and
// shared read-only across concurrent requests.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fargo-family/openai-mcp/internal/domain"
)

// ProviderOpenAI and ProviderAzure are the two provider modes. Azure mode is
// selected whenever AZURE_OPENAI_ENDPOINT is set.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Default model names per capability.
const (
	defaultChatModel      = "gpt-4.1-mini"
	defaultAzureChatModel = "gpt-4o-mini"
	defaultImageModel     = "gpt-image-1"
	defaultAudioModel     = "gpt-4o-mini-tts"
	defaultVideoModel     = "sora-2"
	defaultVoice          = "alloy"
	defaultAPIVersion     = "2024-10-21"
)

// envKeys maps environment variable names to koanf keys. Variables not
// listed here are ignored.
var envKeys = map[string]string{
	"MCP_SERVER_NAME":                 "server.name",
	"MCP_SERVER_INSTRUCTIONS":         "server.instructions",
	"MCP_SERVER_HOST":                 "server.host",
	"MCP_SERVER_PORT":                 "server.port",
	"MCP_SERVER_API_KEY":              "server.api_key",
	"OPENAI_API_KEY":                  "openai.api_key",
	"OPENAI_BASE_URL":                 "openai.base_url",
	"OPENAI_ORG":                      "openai.organization",
	"OPENAI_CHAT_MODEL":               "openai.chat_model",
	"OPENAI_IMAGE_MODEL":              "openai.image_model",
	"OPENAI_AUDIO_MODEL":              "openai.audio_model",
	"OPENAI_VIDEO_MODEL":              "openai.video_model",
	"OPENAI_DEFAULT_VOICE":            "openai.default_voice",
	"OPENAI_API_VERSION":              "openai.api_version_fallback",
	"AZURE_OPENAI_API_KEY":            "openai.azure_api_key",
	"AZURE_OPENAI_ENDPOINT":           "openai.azure_endpoint",
	"AZURE_OPENAI_API_VERSION":        "openai.azure_api_version",
	"AZURE_OPENAI_DEPLOYMENT":         "openai.azure_deployment",
	"AZURE_OPENAI_CHAT_DEPLOYMENT":    "openai.azure_chat_deployment",
	"AZURE_OPENAI_IMAGE_DEPLOYMENT":   "openai.azure_image_deployment",
	"AZURE_OPENAI_AUDIO_DEPLOYMENT":   "openai.azure_audio_deployment",
	"AZURE_OPENAI_VIDEO_DEPLOYMENT":   "openai.azure_video_deployment",
	"AZURE_STORAGE_CONNECTION_STRING": "storage.connection_string",
	"AZURE_BLOB_CONTAINER":            "storage.container",
	"AZURE_BLOB_PUBLIC_BASE_URL":      "storage.public_base_url",
	"AZURE_BLOB_PATH_PREFIX":          "storage.path_prefix",
	"AZURE_BLOB_IMAGE_ROOT":           "storage.image_root",
	"AZURE_BLOB_AUDIO_ROOT":           "storage.audio_root",
	"AZURE_BLOB_VIDEO_ROOT":           "storage.video_root",
}

// Config is the resolved process configuration.
type Config struct {
	Server  ServerConfig
	OpenAI  OpenAIConfig
	Storage StorageConfig
}

// ServerConfig holds the HTTP/MCP server settings.
type ServerConfig struct {
	Name         string
	Instructions string
	Host         string
	Port         int
	APIKey       string
}

// OpenAIConfig holds the resolved provider settings for all capabilities.
// In Azure mode the per-capability model fields carry deployment names.
type OpenAIConfig struct {
	Provider        string
	APIKey          string
	BaseURL         string
	Organization    string
	AzureEndpoint   string
	AzureAPIVersion string
	ChatModel       string
	ImageModel      string
	AudioModel      string
	VideoModel      string
	DefaultVoice    string
}

// ModelFor returns the configured model or deployment name for a capability.
func (c OpenAIConfig) ModelFor(cap domain.Capability) string {
	switch cap {
	case domain.CapabilityChat:
		return c.ChatModel
	case domain.CapabilityImage:
		return c.ImageModel
	case domain.CapabilityAudio:
		return c.AudioModel
	case domain.CapabilityVideo:
		return c.VideoModel
	default:
		return ""
	}
}

// IsAzure reports whether the gateway runs against an Azure OpenAI
// deployment endpoint.
func (c OpenAIConfig) IsAzure() bool {
	return c.Provider == ProviderAzure
}

// StorageConfig holds the Azure Blob Storage settings. The three required
// fields gate whether media tools may execute at all.
type StorageConfig struct {
	ConnectionString string
	Container        string
	PublicBaseURL    string
	PathPrefix       string
	ImageRoot        string
	AudioRoot        string
	VideoRoot        string
}

// Missing returns the environment variable names of required storage fields
// that are unset, in a stable order. An empty result means media tools may
// run.
func (s StorageConfig) Missing() []string {
	var missing []string
	if s.ConnectionString == "" {
		missing = append(missing, "AZURE_STORAGE_CONNECTION_STRING")
	}
	if s.Container == "" {
		missing = append(missing, "AZURE_BLOB_CONTAINER")
	}
	if s.PublicBaseURL == "" {
		missing = append(missing, "AZURE_BLOB_PUBLIC_BASE_URL")
	}
	return missing
}

// Enabled reports whether all required storage fields are present.
func (s StorageConfig) Enabled() bool {
	return len(s.Missing()) == 0
}

// RootFor returns the storage root folder for a media kind, honoring
// configured overrides.
func (s StorageConfig) RootFor(kind domain.MediaKind) string {
	switch kind {
	case domain.MediaKindImage:
		if s.ImageRoot != "" {
			return s.ImageRoot
		}
	case domain.MediaKindAudio:
		if s.AudioRoot != "" {
			return s.AudioRoot
		}
	case domain.MediaKindVideo, domain.MediaKindThumbnail:
		if s.VideoRoot != "" {
			return s.VideoRoot
		}
	}
	return kind.DefaultRoot()
}

// MissingFieldsError reports every required setting absent from the
// environment, so the operator sees the full list at once instead of one
// failure per restart.
type MissingFieldsError struct {
	Fields []string
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Fields, ", "))
}

// rawConfig mirrors the koanf key space before resolution.
type rawConfig struct {
	Server struct {
		Name         string `koanf:"name"`
		Instructions string `koanf:"instructions"`
		Host         string `koanf:"host"`
		Port         int    `koanf:"port"`
		APIKey       string `koanf:"api_key"`
	} `koanf:"server"`
	OpenAI struct {
		APIKey             string `koanf:"api_key"`
		BaseURL            string `koanf:"base_url"`
		Organization       string `koanf:"organization"`
		ChatModel          string `koanf:"chat_model"`
		ImageModel         string `koanf:"image_model"`
		AudioModel         string `koanf:"audio_model"`
		VideoModel         string `koanf:"video_model"`
		DefaultVoice       string `koanf:"default_voice"`
		APIVersionFallback string `koanf:"api_version_fallback"`
		AzureAPIKey        string `koanf:"azure_api_key"`
		AzureEndpoint      string `koanf:"azure_endpoint"`
		AzureAPIVersion    string `koanf:"azure_api_version"`
		AzureDeployment    string `koanf:"azure_deployment"`
		AzureChatDeploy    string `koanf:"azure_chat_deployment"`
		AzureImageDeploy   string `koanf:"azure_image_deployment"`
		AzureAudioDeploy   string `koanf:"azure_audio_deployment"`
		AzureVideoDeploy   string `koanf:"azure_video_deployment"`
	} `koanf:"openai"`
	Storage struct {
		ConnectionString string `koanf:"connection_string"`
		Container        string `koanf:"container"`
		PublicBaseURL    string `koanf:"public_base_url"`
		PathPrefix       string `koanf:"path_prefix"`
		ImageRoot        string `koanf:"image_root"`
		AudioRoot        string `koanf:"audio_root"`
		VideoRoot        string `koanf:"video_root"`
	} `koanf:"storage"`
}

// Load builds the process configuration. An optional YAML file (path may be
// empty) forms the base layer; environment variables override it.
func Load(configFile string) (*Config, error) {
	k := koanf.New(".")

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg := &Config{
		Server:  resolveServer(raw),
		OpenAI:  resolveOpenAI(raw),
		Storage: resolveStorage(raw),
	}
	return cfg, nil
}

// Validate checks that the settings required before any tool becomes
// callable are present. Storage settings are deliberately not required here:
// their absence gates media tools per-call instead.
func (c *Config) Validate() error {
	var missing []string
	if c.Server.APIKey == "" {
		missing = append(missing, "MCP_SERVER_API_KEY")
	}
	if c.OpenAI.IsAzure() {
		if c.OpenAI.APIKey == "" {
			missing = append(missing, "AZURE_OPENAI_API_KEY")
		}
	} else if c.OpenAI.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func resolveServer(raw rawConfig) ServerConfig {
	s := ServerConfig{
		Name:         raw.Server.Name,
		Instructions: raw.Server.Instructions,
		Host:         raw.Server.Host,
		Port:         raw.Server.Port,
		APIKey:       raw.Server.APIKey,
	}
	if s.Name == "" {
		s.Name = "OpenAI + Azure MCP Gateway"
	}
	if s.Instructions == "" {
		s.Instructions = "Expose OpenAI chat, image, speech, and video generation endpoints with a single MCP server."
	}
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8000
	}
	return s
}

func resolveOpenAI(raw rawConfig) OpenAIConfig {
	voice := raw.OpenAI.DefaultVoice
	if voice == "" {
		voice = defaultVoice
	}

	if raw.OpenAI.AzureEndpoint != "" {
		apiVersion := firstNonEmpty(raw.OpenAI.AzureAPIVersion, raw.OpenAI.APIVersionFallback, defaultAPIVersion)
		shared := raw.OpenAI.AzureDeployment
		return OpenAIConfig{
			Provider:        ProviderAzure,
			APIKey:          raw.OpenAI.AzureAPIKey,
			AzureEndpoint:   strings.TrimSuffix(raw.OpenAI.AzureEndpoint, "/"),
			AzureAPIVersion: apiVersion,
			ChatModel:       firstNonEmpty(raw.OpenAI.AzureChatDeploy, shared, raw.OpenAI.ChatModel, defaultAzureChatModel),
			ImageModel:      firstNonEmpty(raw.OpenAI.AzureImageDeploy, shared, raw.OpenAI.ImageModel, defaultImageModel),
			AudioModel:      firstNonEmpty(raw.OpenAI.AzureAudioDeploy, shared, raw.OpenAI.AudioModel, defaultAudioModel),
			VideoModel:      firstNonEmpty(raw.OpenAI.AzureVideoDeploy, shared, raw.OpenAI.VideoModel, defaultVideoModel),
			DefaultVoice:    voice,
		}
	}

	return OpenAIConfig{
		Provider:     ProviderOpenAI,
		APIKey:       raw.OpenAI.APIKey,
		BaseURL:      strings.TrimSuffix(raw.OpenAI.BaseURL, "/"),
		Organization: raw.OpenAI.Organization,
		ChatModel:    firstNonEmpty(raw.OpenAI.ChatModel, defaultChatModel),
		ImageModel:   firstNonEmpty(raw.OpenAI.ImageModel, defaultImageModel),
		AudioModel:   firstNonEmpty(raw.OpenAI.AudioModel, defaultAudioModel),
		VideoModel:   firstNonEmpty(raw.OpenAI.VideoModel, defaultVideoModel),
		DefaultVoice: voice,
	}
}

func resolveStorage(raw rawConfig) StorageConfig {
	return StorageConfig{
		ConnectionString: raw.Storage.ConnectionString,
		Container:        raw.Storage.Container,
		PublicBaseURL:    strings.TrimSuffix(raw.Storage.PublicBaseURL, "/"),
		PathPrefix:       NormalizePathSegment(raw.Storage.PathPrefix),
		ImageRoot:        NormalizePathSegment(raw.Storage.ImageRoot),
		AudioRoot:        NormalizePathSegment(raw.Storage.AudioRoot),
		VideoRoot:        NormalizePathSegment(raw.Storage.VideoRoot),
	}
}

// NormalizePathSegment strips leading/trailing slashes and collapses empty
// segments, so "/a//b/" becomes "a/b". Returns "" for blank input.
func NormalizePathSegment(raw string) string {
	trimmed := strings.Trim(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
