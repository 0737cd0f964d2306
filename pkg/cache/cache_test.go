package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrSetComputesOnce(t *testing.T) {
	c := New(DefaultOptions(), nil)
	ctx := context.Background()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrSet(ctx, "k", KindCourse, []string{"course:1"}, compute)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c := New(DefaultOptions(), nil)
	ctx := context.Background()

	calls := 0
	_, err := c.GetOrSet(ctx, "k", KindCourse, nil, func() (interface{}, error) {
		calls++
		return nil, assert.AnError
	})
	assert.Error(t, err)

	v, err := c.GetOrSet(ctx, "k", KindCourse, nil, func() (interface{}, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls, "失败结果不缓存，下一次重新计算")
}

func TestInvalidateTags(t *testing.T) {
	c := New(DefaultOptions(), nil)
	ctx := context.Background()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	v, _ := c.GetOrSet(ctx, "course:1:toc", KindTOC, []string{"course:1"}, compute)
	assert.Equal(t, 1, v)
	c.GetOrSet(ctx, "course:2:toc", KindTOC, []string{"course:2"}, compute)

	c.InvalidateTags(ctx, "course:1")

	v, _ = c.GetOrSet(ctx, "course:1:toc", KindTOC, []string{"course:1"}, compute)
	assert.Equal(t, 3, v, "标签失效后重新计算")

	v, _ = c.GetOrSet(ctx, "course:2:toc", KindTOC, []string{"course:2"}, compute)
	assert.Equal(t, 2, v, "其他课程的条目不受影响")
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(DefaultOptions(), nil)
	ctx := context.Background()

	noop := func() (interface{}, error) { return 1, nil }
	c.GetOrSet(ctx, "course:1:toc", KindTOC, nil, noop)
	c.GetOrSet(ctx, "course:1:stats", KindStats, nil, noop)
	c.GetOrSet(ctx, "course:2:toc", KindTOC, nil, noop)

	c.InvalidatePrefix("course:1:")
	assert.Equal(t, 1, c.Len())
}

func TestTTLExpiry(t *testing.T) {
	c := New(Options{
		Capacity: 10,
		TTLs:     map[Kind]time.Duration{KindSearch: 20 * time.Millisecond},
	}, nil)
	ctx := context.Background()

	calls := 0
	compute := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	c.GetOrSet(ctx, "k", KindSearch, nil, compute)
	v, _ := c.GetOrSet(ctx, "k", KindSearch, nil, compute)
	assert.Equal(t, 1, v)

	time.Sleep(30 * time.Millisecond)

	v, _ = c.GetOrSet(ctx, "k", KindSearch, nil, compute)
	assert.Equal(t, 2, v, "过期后重新计算")
}

func TestEvictionPrefersLowHitCount(t *testing.T) {
	c := New(Options{Capacity: 2}, nil)
	ctx := context.Background()

	noop := func() (interface{}, error) { return "v", nil }

	c.GetOrSet(ctx, "hot", KindCourse, nil, noop)
	c.GetOrSet(ctx, "hot", KindCourse, nil, noop)
	c.GetOrSet(ctx, "hot", KindCourse, nil, noop)
	c.GetOrSet(ctx, "cold", KindCourse, nil, noop)

	// 超容量触发淘汰，命中最少的 cold 出局
	c.GetOrSet(ctx, "new", KindCourse, nil, noop)
	assert.Equal(t, 2, c.Len())

	calls := 0
	c.GetOrSet(ctx, "hot", KindCourse, nil, func() (interface{}, error) {
		calls++
		return "v", nil
	})
	assert.Equal(t, 0, calls, "高频条目保留")
}

func TestFlush(t *testing.T) {
	c := New(DefaultOptions(), nil)
	ctx := context.Background()

	c.GetOrSet(ctx, "a", KindCourse, []string{"t"}, func() (interface{}, error) { return 1, nil })
	c.GetOrSet(ctx, "b", KindCourse, []string{"t"}, func() (interface{}, error) { return 2, nil })
	require.Equal(t, 2, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
}
