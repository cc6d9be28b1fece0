package cache

import "github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"

// Cache stores finished transcripts keyed by audio checksum.
type Cache interface {
	Get(key string) (*models.Transcript, bool, error)
	Put(key string, t *models.Transcript) error
	Close() error
}
