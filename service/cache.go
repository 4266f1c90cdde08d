package service

import (
	"time"

	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/shaj13/libcache"
	_ "github.com/shaj13/libcache/lru"
	log "github.com/sirupsen/logrus"
)

// ReviewCache keeps successful review results. Only validated results are
// stored, and callers get their own copy.
type ReviewCache interface {
	Get(key string) (*view.ReviewResult, bool)
	Put(key string, result *view.ReviewResult)
}

func NewReviewCache(size int, ttl time.Duration) ReviewCache {
	if size <= 0 {
		return noopReviewCache{}
	}
	cache := libcache.LRU.New(size)
	if ttl > 0 {
		cache.SetTTL(ttl)
	}
	log.Infof("Review cache enabled: size %d, ttl %s", size, ttl)
	return &reviewCacheImpl{cache: cache}
}

type reviewCacheImpl struct {
	cache libcache.Cache
}

func (r reviewCacheImpl) Get(key string) (*view.ReviewResult, bool) {
	val, ok := r.cache.Load(key)
	if !ok {
		return nil, false
	}
	result, ok := val.(view.ReviewResult)
	if !ok {
		return nil, false
	}
	return cloneReviewResult(result), true
}

func (r reviewCacheImpl) Put(key string, result *view.ReviewResult) {
	if result == nil {
		return
	}
	r.cache.Store(key, *cloneReviewResult(*result))
}

type noopReviewCache struct{}

func (noopReviewCache) Get(string) (*view.ReviewResult, bool) { return nil, false }

func (noopReviewCache) Put(string, *view.ReviewResult) {}

func cloneReviewResult(r view.ReviewResult) *view.ReviewResult {
	clone := r
	if r.Issues != nil {
		clone.Issues = make([]view.Issue, len(r.Issues))
		for i, issue := range r.Issues {
			if issue.Line != nil {
				line := *issue.Line
				issue.Line = &line
			}
			clone.Issues[i] = issue
		}
	}
	if r.PositiveAspects != nil {
		clone.PositiveAspects = append([]string{}, r.PositiveAspects...)
	}
	return &clone
}
