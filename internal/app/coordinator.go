package app

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	planner "github.com/tidyplan/plannerd/internal"
	"github.com/tidyplan/plannerd/internal/cache"
	"github.com/tidyplan/plannerd/internal/telemetry"
)

// FetchFunc computes a serialized result set on cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Coordinator wires the TTL cache around store fetches: reads are served
// from cache while fresh, misses fetch through exactly once per key, and
// mutations invalidate every key of the mutated resource type before the
// mutation is acknowledged.
type Coordinator struct {
	cache   cache.Cache
	group   singleflight.Group
	metrics *telemetry.Metrics // nil = no metrics
	tracer  trace.Tracer
}

// NewCoordinator creates a coordinator over the given cache.
func NewCoordinator(c cache.Cache, m *telemetry.Metrics) *Coordinator {
	return &Coordinator{
		cache:   c,
		metrics: m,
		tracer:  telemetry.Tracer("plannerd/app"),
	}
}

// ReadThrough serves the key from cache when fresh, otherwise fetches and,
// only on success, populates the cache before returning. A fetch error
// propagates untouched and leaves the cache unchanged. With fresh=true the
// cache check is skipped but a successful fetch still repopulates the entry.
// Concurrent misses for the same key share a single fetch.
func (c *Coordinator) ReadThrough(ctx context.Context, rt planner.ResourceType, key string, ttl time.Duration, fresh bool, fetch FetchFunc) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "coordinator.read_through",
		trace.WithAttributes(
			attribute.String("resource", string(rt)),
			attribute.Bool("force_fresh", fresh),
		))
	defer span.End()

	if !fresh {
		if data, ok := c.cache.Get(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			if c.metrics != nil {
				c.metrics.CacheHits.WithLabelValues(string(rt)).Inc()
			}
			return data, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(string(rt)).Inc()
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		start := time.Now()
		data, err := fetch(ctx)
		if c.metrics != nil {
			c.metrics.FetchDuration.WithLabelValues(string(rt)).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			return nil, err
		}
		c.cache.Set(ctx, key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// InvalidateResource drops every cached entry for the resource type,
// whatever filter combination produced it. Mutations call it after store
// success and before acknowledging the caller, so a read issued after the
// acknowledgement can never observe a pre-mutation entry. It returns the
// number of entries removed.
func (c *Coordinator) InvalidateResource(ctx context.Context, rt planner.ResourceType) int {
	prefix := ResourcePrefix(rt)
	n := c.cache.Invalidate(ctx, func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
	if c.metrics != nil {
		c.metrics.Invalidations.WithLabelValues(string(rt)).Inc()
	}
	return n
}

// Clear empties the whole cache. Diagnostics and tests only.
func (c *Coordinator) Clear(ctx context.Context) {
	c.cache.Clear(ctx)
}
