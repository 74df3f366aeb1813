package translator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// WrapLRUCache adds an in-memory result cache in front of a translator.
// Lookups are per sentence; only uncached sentences are forwarded to the
// underlying provider, and the merged output keeps the input order.
func WrapLRUCache(next Translator, size int, ttl time.Duration) Translator {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &cachedTranslator{
		next:  next,
		cache: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

type cachedTranslator struct {
	next  Translator
	cache *expirable.LRU[string, string]
}

func (c *cachedTranslator) Name() string {
	return c.next.Name()
}

func (c *cachedTranslator) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	result := make([]string, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))
	for i, text := range texts {
		key := c.cacheKey(sourceLang, targetLang, text)
		if cached, ok := c.cache.Get(key); ok {
			result[i] = cached
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		logutil.GetLogger(ctx).Debug("translation cache hit for full chunk", zap.Int("size", len(texts)))
		return result, nil
	}
	translated, err := c.next.Translate(ctx, missTexts, sourceLang, targetLang)
	if err != nil {
		return nil, err
	}
	if err := checkSize(len(translated), len(missTexts)); err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		result[i] = translated[j]
		c.cache.Add(c.cacheKey(sourceLang, targetLang, texts[i]), translated[j])
	}
	return result, nil
}

func (c *cachedTranslator) cacheKey(sourceLang, targetLang, text string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{c.next.Name(), sourceLang, targetLang, text}, "\x00")))
	return hex.EncodeToString(sum[:])
}
