package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestAllowDrainsAndRefills(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	l := newLimiter(3, 3*time.Second, c.now)

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("10.0.0.1")
		assert.True(t, ok, "request %d", i)
	}
	ok, wait := l.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.InDelta(t, float64(time.Second), float64(wait), float64(time.Millisecond))

	// Other keys are independent.
	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok)

	c.t = c.t.Add(time.Second)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestEvictIdle(t *testing.T) {
	c := &clock{t: time.Unix(0, 0)}
	l := newLimiter(5, time.Minute, c.now)
	l.Allow("a")
	c.t = c.t.Add(90 * time.Second)
	l.Allow("b")
	c.t = c.t.Add(60 * time.Second)
	l.evictIdle()
	assert.Equal(t, 1, l.Len())
}

func TestNewDefaultsAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := New(ctx, 0, 0)
	ok, _ := l.Allow("x")
	assert.True(t, ok)
	ok, _ = l.Allow("x")
	assert.False(t, ok)
}
