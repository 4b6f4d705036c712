package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyStable(t *testing.T) {
	type filter struct {
		Search string `json:"search"`
		Page   int    `json:"page"`
	}
	a := Key("rooms:list", filter{Search: "1000", Page: 1})
	b := Key("rooms:list", filter{Search: "1000", Page: 1})
	c := Key("rooms:list", filter{Search: "1000", Page: 2})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^rooms:list:[0-9a-f]{24}$`, a)
}

func TestCacheServiceRemember(t *testing.T) {
	repo := newMemCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	calls := 0
	load := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"1000", "1001"}
			return nil
		}
	}

	var first []string
	hit, err := svc.Remember(context.Background(), "rooms:test", 0, &first, load(&first))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"1000", "1001"}, first)

	var second []string
	hit, err = svc.Remember(context.Background(), "rooms:test", 0, &second, load(&second))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, svc.Invalidate(context.Background(), "rooms:*"))
	assert.Zero(t, repo.len())
}

func TestCacheServiceRememberLoadError(t *testing.T) {
	svc := NewCacheService(newMemCacheRepo(), nil, time.Minute, nil, true)
	var dest []string
	_, err := svc.Remember(context.Background(), "k", 0, &dest, func() error { return errors.New("db down") })
	require.Error(t, err)
}

func TestCacheServiceDisabled(t *testing.T) {
	var svc *CacheService
	assert.False(t, svc.Enabled())

	var dest int
	hit, err := svc.Remember(context.Background(), "k", 0, &dest, func() error { dest = 7; return nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, dest)
	require.NoError(t, svc.Invalidate(context.Background(), "rooms:*"))
}
