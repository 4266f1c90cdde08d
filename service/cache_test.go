package service

import (
	"testing"
	"time"

	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(rating int) *view.ReviewResult {
	line := 4
	return &view.ReviewResult{
		OverallRating:   rating,
		Issues:          []view.Issue{{Type: view.IssueTypeStyle, Severity: view.SeverityLow, Line: &line, Description: "d", Suggestion: "s"}},
		PositiveAspects: []string{"tests"},
		Summary:         "ok",
	}
}

func TestReviewCacheDisabled(t *testing.T) {
	cache := NewReviewCache(0, time.Hour)
	cache.Put("k", sampleResult(5))
	_, ok := cache.Get("k")
	assert.False(t, ok)
}

func TestReviewCacheReturnsCopies(t *testing.T) {
	cache := NewReviewCache(10, time.Hour)
	original := sampleResult(5)
	cache.Put("k", original)
	original.Issues[0].Description = "changed"

	cached, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, "d", cached.Issues[0].Description)

	*cached.Issues[0].Line = 100
	cached.PositiveAspects[0] = "changed"
	again, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, 4, *again.Issues[0].Line)
	assert.Equal(t, "tests", again.PositiveAspects[0])
}

func TestReviewCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewReviewCache(2, time.Hour)
	cache.Put("a", sampleResult(1))
	cache.Put("b", sampleResult(2))
	cache.Put("c", sampleResult(3))

	_, ok := cache.Get("a")
	assert.False(t, ok)
	b, ok := cache.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, b.OverallRating)
	_, ok = cache.Get("c")
	assert.True(t, ok)
}

func TestReviewCacheIgnoresNil(t *testing.T) {
	cache := NewReviewCache(2, 0)
	cache.Put("a", nil)
	_, ok := cache.Get("a")
	assert.False(t, ok)
}
