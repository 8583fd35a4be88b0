package classify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ecosort/ecosort/internal/storage"
	"github.com/rs/zerolog/log"
)

// CachedClassifier wraps a Classifier with SQLite caching. Identical images
// hash to the same key, so re-submitting a photo does not cost another
// model call.
type CachedClassifier struct {
	inner Classifier
	store storage.Store
}

// NewCachedClassifier creates a cached classifier.
func NewCachedClassifier(inner Classifier, store storage.Store) *CachedClassifier {
	return &CachedClassifier{inner: inner, store: store}
}

func hashImage(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Classify implements the Classifier interface with caching.
func (c *CachedClassifier) Classify(ctx context.Context, imageData []byte, mimeType string) (*Classification, error) {
	hash := hashImage(imageData)

	if c.store != nil {
		entry, err := c.store.GetClassification(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check classification cache")
		} else if entry != nil {
			var result Result
			if err := json.Unmarshal([]byte(entry.ResultJSON), &result); err != nil {
				log.Warn().Err(err).Msg("failed to decode cached classification")
			} else {
				log.Debug().Str("hash", hash[:16]).Msg("classification cache hit")
				result.Normalize()
				// Zero usage for cached result
				return &Classification{Result: &result, Usage: Usage{}}, nil
			}
		}
	}

	classification, err := c.inner.Classify(ctx, imageData, mimeType)
	if err != nil {
		return nil, err
	}

	if c.store != nil && classification.Result != nil {
		encoded, err := json.Marshal(classification.Result)
		if err != nil {
			log.Warn().Err(err).Msg("failed to encode classification for cache")
		} else if err := c.store.SetClassification(&storage.ClassificationEntry{
			ImageHash:  hash,
			ResultJSON: string(encoded),
		}); err != nil {
			log.Warn().Err(err).Msg("failed to cache classification")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached classification")
		}
	}

	return classification, nil
}
