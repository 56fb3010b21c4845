package timers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/logging"
	"github.com/dmitrijs2005/countdown/internal/server/models"
	"github.com/dmitrijs2005/countdown/internal/server/objectstore"
)

const key = "data/timers.json"

var t0 = time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)

// -------- test fakes --------

// brokenStore fails the configured operations; the rest go to the embedded store.
type brokenStore struct {
	objectstore.Store
	fetchErr error
	writeErr error
	listErr  error
	writes   []objectstore.WriteOptions
}

func (b *brokenStore) Fetch(ctx context.Context, k string) (*objectstore.Object, error) {
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	return b.Store.Fetch(ctx, k)
}

func (b *brokenStore) Write(ctx context.Context, k string, data []byte, opts objectstore.WriteOptions) (*objectstore.WriteResult, error) {
	b.writes = append(b.writes, opts)
	if b.writeErr != nil {
		return nil, b.writeErr
	}
	return b.Store.Write(ctx, k, data, opts)
}

func (b *brokenStore) List(ctx context.Context, prefix string) ([]string, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.Store.List(ctx, prefix)
}

// -------- helpers --------

func newRepo(store objectstore.Store, opts Options) *DocumentRepository {
	return NewDocumentRepository(store, key, opts, logging.Discard())
}

func seed(t *testing.T, store objectstore.Store, timers ...models.Timer) {
	t.Helper()
	if timers == nil {
		timers = []models.Timer{}
	}
	b, err := json.Marshal(timers)
	require.NoError(t, err)
	_, err = store.Write(context.Background(), key, b, objectstore.WriteOptions{})
	require.NoError(t, err)
}

func stored(t *testing.T, store objectstore.Store) []models.Timer {
	t.Helper()
	obj, err := store.Fetch(context.Background(), key)
	require.NoError(t, err)
	var timers []models.Timer
	require.NoError(t, json.Unmarshal(obj.Data, &timers))
	return timers
}

// -------- tests --------

func TestInitialize_CreatesEmptyDocument(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	repo := newRepo(mem, Options{PublicRead: true})

	require.NoError(t, repo.Initialize(context.Background()))

	obj, err := mem.Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(obj.Data))

	ct, public, ok := mem.Attributes(key)
	require.True(t, ok)
	assert.Equal(t, "application/json", ct)
	assert.True(t, public)
}

func TestInitialize_IsIdempotent(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	seed(t, mem, models.NewTimer("t1", "Launch", 10, t0))
	repo := newRepo(mem, Options{})

	require.NoError(t, repo.Initialize(context.Background()))
	require.NoError(t, repo.Initialize(context.Background()))

	assert.Len(t, stored(t, mem), 1, "existing document must be kept")
}

func TestInitialize_SwallowsStoreErrors(t *testing.T) {
	t.Run("list fails", func(t *testing.T) {
		store := &brokenStore{Store: objectstore.NewMemoryStore(), listErr: common.ErrStoreUnavailable}
		require.NoError(t, newRepo(store, Options{}).Initialize(context.Background()))
		assert.Empty(t, store.writes)
	})

	t.Run("write fails", func(t *testing.T) {
		store := &brokenStore{Store: objectstore.NewMemoryStore(), writeErr: common.ErrStoreUnavailable}
		require.NoError(t, newRepo(store, Options{}).Initialize(context.Background()))
	})
}

func TestInitialize_KeyWithoutDirectory(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	repo := NewDocumentRepository(mem, "timers.json", Options{}, logging.Discard())

	require.NoError(t, repo.Initialize(context.Background()))

	_, err := mem.Fetch(context.Background(), "timers.json")
	require.NoError(t, err)
}

func TestLoadAll_MissingDocumentHeals(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	repo := newRepo(mem, Options{})

	timers, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, timers)
	assert.Empty(t, timers)

	assert.Empty(t, stored(t, mem), "an empty document is written back")
}

func TestLoadAll_StoreFailureReturnsEmptyWithoutWriting(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	seed(t, mem, models.NewTimer("t1", "Launch", 10, t0))
	store := &brokenStore{Store: mem, fetchErr: fmt.Errorf("%w: timeout", common.ErrStoreUnavailable)}

	timers, err := newRepo(store, Options{}).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, timers)
	assert.Empty(t, store.writes)
	assert.Len(t, stored(t, mem), 1)
}

func TestLoadAll_CorruptDocumentIsNotOverwritten(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	_, err := mem.Write(context.Background(), key, []byte(`{not json`), objectstore.WriteOptions{})
	require.NoError(t, err)

	timers, err := newRepo(mem, Options{}).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, timers)

	obj, err := mem.Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(obj.Data))
}

func TestLoadAll_NullDocument(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	_, err := mem.Write(context.Background(), key, []byte(`null`), objectstore.WriteOptions{})
	require.NoError(t, err)

	timers, err := newRepo(mem, Options{}).LoadAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, timers)
	assert.Empty(t, timers)
}

func TestAppend_PreservesOrder(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	repo := newRepo(mem, Options{ConditionalWrites: true})
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Append(ctx, models.NewTimer(fmt.Sprintf("t%d", i), name, i, t0)))
	}

	timers, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 3)
	assert.Equal(t, []string{"t0", "t1", "t2"}, []string{timers[0].ID, timers[1].ID, timers[2].ID})
}

func TestAppend_DuplicateID(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	seed(t, mem, models.NewTimer("t1", "Launch", 10, t0))

	err := newRepo(mem, Options{}).Append(context.Background(), models.NewTimer("t1", "Other", 1, t0))
	require.ErrorIs(t, err, common.ErrAlreadyExists)
	assert.Len(t, stored(t, mem), 1)
}

func TestAppend_SurfacesReadErrors(t *testing.T) {
	store := &brokenStore{Store: objectstore.NewMemoryStore(), fetchErr: common.ErrStoreUnavailable}

	err := newRepo(store, Options{}).Append(context.Background(), models.NewTimer("t1", "Launch", 10, t0))
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.Empty(t, store.writes, "nothing is written after a failed read")
}

func TestAppend_SurfacesCorruptDocument(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	_, err := mem.Write(context.Background(), key, []byte(`"oops"`), objectstore.WriteOptions{})
	require.NoError(t, err)

	err = newRepo(mem, Options{}).Append(context.Background(), models.NewTimer("t1", "Launch", 10, t0))
	require.ErrorIs(t, err, common.ErrCorruptDocument)
}

func TestAppend_SendsVersionOnlyWhenConditional(t *testing.T) {
	for _, conditional := range []bool{true, false} {
		mem := objectstore.NewMemoryStore()
		seed(t, mem)
		store := &brokenStore{Store: mem}

		require.NoError(t, newRepo(store, Options{ConditionalWrites: conditional}).
			Append(context.Background(), models.NewTimer("t1", "Launch", 10, t0)))

		require.Len(t, store.writes, 1)
		assert.False(t, store.writes[0].IfAbsent, "the document was read, so it exists")
		if conditional {
			assert.Equal(t, "1", store.writes[0].PreviousVersion)
		} else {
			assert.Empty(t, store.writes[0].PreviousVersion)
		}
		assert.Equal(t, "application/json", store.writes[0].ContentType)
	}
}

// versionBumpingStore simulates a concurrent writer between read and write.
type versionBumpingStore struct {
	*objectstore.MemoryStore
}

func (v versionBumpingStore) Fetch(ctx context.Context, k string) (*objectstore.Object, error) {
	obj, err := v.MemoryStore.Fetch(ctx, k)
	if err != nil {
		return nil, err
	}
	if _, err := v.MemoryStore.Write(ctx, k, obj.Data, objectstore.WriteOptions{}); err != nil {
		return nil, err
	}
	return obj, nil
}

func TestAppend_ConcurrentWriteDetected(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	seed(t, mem)

	err := newRepo(versionBumpingStore{mem}, Options{ConditionalWrites: true}).
		Append(context.Background(), models.NewTimer("t1", "Launch", 10, t0))
	require.ErrorIs(t, err, common.ErrVersionConflict)
	assert.Empty(t, stored(t, mem))
}

// racingStore lets another writer create the document right before the
// first write goes through.
type racingStore struct {
	*objectstore.MemoryStore
	other []byte
	raced bool
}

func (r *racingStore) Write(ctx context.Context, k string, data []byte, opts objectstore.WriteOptions) (*objectstore.WriteResult, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.MemoryStore.Write(ctx, k, r.other, objectstore.WriteOptions{}); err != nil {
			return nil, err
		}
	}
	return r.MemoryStore.Write(ctx, k, data, opts)
}

func newRacingStore(t *testing.T, timers ...models.Timer) (*racingStore, *objectstore.MemoryStore) {
	t.Helper()
	b, err := json.Marshal(timers)
	require.NoError(t, err)
	mem := objectstore.NewMemoryStore()
	return &racingStore{MemoryStore: mem, other: b}, mem
}

func TestEmptyDocumentDoesNotOverwriteConcurrentCreate(t *testing.T) {
	created := models.NewTimer("t1", "Launch", 10, t0)

	t.Run("initialize", func(t *testing.T) {
		store, mem := newRacingStore(t, created)

		require.NoError(t, newRepo(store, Options{ConditionalWrites: true}).Initialize(context.Background()))
		assert.Equal(t, []models.Timer{created}, stored(t, mem))
	})

	t.Run("load all", func(t *testing.T) {
		store, mem := newRacingStore(t, created)

		timers, err := newRepo(store, Options{ConditionalWrites: true}).LoadAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []models.Timer{created}, timers)
		assert.Equal(t, []models.Timer{created}, stored(t, mem))
	})

	t.Run("append", func(t *testing.T) {
		store, mem := newRacingStore(t, created)

		err := newRepo(store, Options{ConditionalWrites: true}).
			Append(context.Background(), models.NewTimer("t2", "Other", 1, t0))
		require.ErrorIs(t, err, common.ErrVersionConflict)
		assert.Equal(t, []models.Timer{created}, stored(t, mem))
	})
}

func TestMissingDocumentWriteIsCreateOnlyWhenConditional(t *testing.T) {
	for _, conditional := range []bool{true, false} {
		store := &brokenStore{Store: objectstore.NewMemoryStore()}

		require.NoError(t, newRepo(store, Options{ConditionalWrites: conditional}).Initialize(context.Background()))

		require.Len(t, store.writes, 1)
		assert.Equal(t, conditional, store.writes[0].IfAbsent)
		assert.Empty(t, store.writes[0].PreviousVersion)
	}
}

func TestReplace(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	a := models.NewTimer("a", "A", 1, t0)
	b := models.NewTimer("b", "B", 2, t0)
	c := models.NewTimer("c", "C", 3, t0)
	seed(t, mem, a, b, c)
	repo := newRepo(mem, Options{ConditionalWrites: true})

	updated := b.Reset(t0.Add(time.Hour))
	require.NoError(t, repo.Replace(context.Background(), "b", updated))

	assert.Equal(t, []models.Timer{a, updated, c}, stored(t, mem))
}

func TestReplace_UnknownID(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	seed(t, mem, models.NewTimer("a", "A", 1, t0))
	store := &brokenStore{Store: mem}

	err := newRepo(store, Options{}).Replace(context.Background(), "zzz", models.NewTimer("zzz", "Z", 1, t0))
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, store.writes)
}

func TestReplace_WriteFailure(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	a := models.NewTimer("a", "A", 1, t0)
	seed(t, mem, a)
	store := &brokenStore{Store: mem, writeErr: errors.New("network down")}

	err := newRepo(store, Options{}).Replace(context.Background(), "a", a.Reset(t0.Add(time.Hour)))
	require.Error(t, err)
	assert.Equal(t, []models.Timer{a}, stored(t, mem), "last written state is kept")
}

func TestGet(t *testing.T) {
	mem := objectstore.NewMemoryStore()
	a := models.NewTimer("a", "A", 1, t0)
	seed(t, mem, a)
	repo := newRepo(mem, Options{})

	got, err := repo.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, a, *got)

	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGet_MissingDocument(t *testing.T) {
	_, err := newRepo(objectstore.NewMemoryStore(), Options{}).Get(context.Background(), "a")
	require.ErrorIs(t, err, common.ErrNotFound)
}
