package catalog_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/internal/catalog/catalogtest"
	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
)

func TestStoreLoadsFromFiles(t *testing.T) {
	vectorPath, metadataPath := catalogtest.WriteFiles(t, t.TempDir(), catalogtest.Classics())
	store := catalog.NewStore(vectorPath, metadataPath)
	assert.False(t, store.Loaded())

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Size())
	assert.True(t, store.Loaded())

	rec, err := snap.Record(5)
	require.NoError(t, err)
	assert.Equal(t, "Amelie", rec.Title)
	require.NotNil(t, rec.Rating)
	assert.InDelta(t, 8.3, *rec.Rating, 1e-9)

	speed, err := snap.Record(6)
	require.NoError(t, err)
	assert.Nil(t, speed.Rating)
	assert.Nil(t, speed.Votes)

	again, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, again)
}

func TestStoreLoadsOnceConcurrently(t *testing.T) {
	var calls atomic.Int32
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	store := catalog.NewStoreFunc(func(ctx context.Context) ([]catalog.MovieRecord, []catalog.DocumentVector, error) {
		calls.Add(1)
		records := make([]catalog.MovieRecord, snap.Size())
		vectors := make([]catalog.DocumentVector, snap.Size())
		for i := range records {
			records[i], _ = snap.Record(i)
			vectors[i], _ = snap.Vector(i)
		}
		return records, vectors, nil
	})

	var wg sync.WaitGroup
	results := make([]*catalog.Snapshot, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := store.Load(context.Background())
			assert.NoError(t, err)
			results[i] = s
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	for _, s := range results {
		assert.Same(t, results[0], s)
	}
}

func TestStoreRemembersFailure(t *testing.T) {
	var calls atomic.Int32
	cause := errors.New("disk on fire")
	store := catalog.NewStoreFunc(func(ctx context.Context) ([]catalog.MovieRecord, []catalog.DocumentVector, error) {
		calls.Add(1)
		return nil, nil, cause
	})
	for i := 0; i < 3; i++ {
		snap, err := store.Load(context.Background())
		assert.Nil(t, snap)
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
		assert.ErrorIs(t, err, cause)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, store.Loaded())
}

func TestStoreFileErrors(t *testing.T) {
	dir := t.TempDir()
	vectorPath, metadataPath := catalogtest.WriteFiles(t, dir, catalogtest.Classics())

	t.Run("missing vector artifact", func(t *testing.T) {
		_, err := catalog.NewStore(dir+"/absent.mvec", metadataPath).Load(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
	})
	t.Run("missing metadata", func(t *testing.T) {
		_, err := catalog.NewStore(vectorPath, dir+"/absent.csv").Load(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
	})
	t.Run("row count mismatch", func(t *testing.T) {
		other := t.TempDir()
		_, shortMeta := catalogtest.WriteFiles(t, other, catalogtest.Classics()[:3])
		_, err := catalog.NewStore(vectorPath, shortMeta).Load(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
	})
	t.Run("corrupt artifact", func(t *testing.T) {
		data, err := os.ReadFile(vectorPath)
		require.NoError(t, err)
		data[len(data)/2] ^= 0xff
		corrupt := t.TempDir() + "/corrupt.mvec"
		require.NoError(t, os.WriteFile(corrupt, data, 0o644))
		_, err = catalog.NewStore(corrupt, metadataPath).Load(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrDataUnavailable)
	})
}

func TestStaticStore(t *testing.T) {
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	store := catalog.NewStaticStore(snap)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.True(t, store.Loaded())
}

func TestStoreLoadIgnoresCallerCancellation(t *testing.T) {
	snap := catalogtest.Snapshot(t, catalogtest.Classics())
	var calls atomic.Int32
	store := catalog.NewStoreFunc(func(ctx context.Context) ([]catalog.MovieRecord, []catalog.DocumentVector, error) {
		calls.Add(1)
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		records := make([]catalog.MovieRecord, snap.Size())
		vectors := make([]catalog.DocumentVector, snap.Size())
		for i := range records {
			records[i], _ = snap.Record(i)
			vectors[i], _ = snap.Vector(i)
		}
		return records, vectors, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, first.Size())

	second, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, store.Loaded())
}

func TestFileStoreAfterCancelledFirstCaller(t *testing.T) {
	vectorPath, metadataPath := catalogtest.WriteFiles(t, t.TempDir(), catalogtest.Classics())
	store := catalog.NewStore(vectorPath, metadataPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Load(ctx)
	assert.NotErrorIs(t, err, apperrors.ErrDataUnavailable)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Size())
}
