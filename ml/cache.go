package ml

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingPredictor memoizes predictions per applicant. Only valid because
// the wrapped model is immutable and deterministic.
type CachingPredictor struct {
	next  ModelProvider
	cache *lru.Cache[Applicant, float64]
}

func NewCachingPredictor(next ModelProvider, size int) (*CachingPredictor, error) {
	cache, err := lru.New[Applicant, float64](size)
	if err != nil {
		return nil, err
	}
	return &CachingPredictor{next: next, cache: cache}, nil
}

func (c *CachingPredictor) Predict(ctx context.Context, applicant Applicant) (float64, error) {
	if v, ok := c.cache.Get(applicant); ok {
		return v, nil
	}
	v, err := c.next.Predict(ctx, applicant)
	if err != nil {
		return 0, err
	}
	c.cache.Add(applicant, v)
	return v, nil
}

func (c *CachingPredictor) Len() int {
	return c.cache.Len()
}
