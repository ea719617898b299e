// Package storage persists generated media to object storage and maps
// uploaded blobs to public URLs.
package storage

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fargo-family/openai-mcp/internal/config"
	"github.com/fargo-family/openai-mcp/internal/domain"
)

// keyTimestampLayout is lexicographically sortable at second granularity.
const keyTimestampLayout = "20060102T150405"

// KeyGenerator derives storage keys of the form
// {prefix}/{root}/{timestamp}-{uniqueId}.{ext}. The timestamp keeps keys
// sortable; the uuid component makes collisions negligible across
// concurrent uploads within and across processes.
type KeyGenerator struct {
	cfg config.StorageConfig
	now func() time.Time
	id  func() string
}

// NewKeyGenerator creates a key generator over the given storage config.
func NewKeyGenerator(cfg config.StorageConfig) *KeyGenerator {
	return &KeyGenerator{
		cfg: cfg,
		now: time.Now,
		id:  func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// KeyFor generates a new storage key for an asset of the given kind.
func (g *KeyGenerator) KeyFor(kind domain.MediaKind, extension string) string {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	if ext == "" {
		ext = "bin"
	}

	filename := g.now().UTC().Format(keyTimestampLayout) + "-" + g.id() + "." + ext

	segments := make([]string, 0, 3)
	if g.cfg.PathPrefix != "" {
		segments = append(segments, g.cfg.PathPrefix)
	}
	segments = append(segments, g.cfg.RootFor(kind), filename)
	return strings.Join(segments, "/")
}
