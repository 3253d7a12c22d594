package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/recordgraph/recordgraph/internal/pkg/apperr"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockIdentifierBridge is a mock implementation of IdentifierBridge
type MockIdentifierBridge struct {
	mock.Mock
}

func (m *MockIdentifierBridge) ResolveInternal(ctx context.Context, kind model.Kind, externalID string) (uint, error) {
	args := m.Called(ctx, kind, externalID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockIdentifierBridge) ResolveExternal(ctx context.Context, kind model.Kind, key uint) (string, error) {
	args := m.Called(ctx, kind, key)
	return args.String(0), args.Error(1)
}

func (m *MockIdentifierBridge) ResolveInternalMany(ctx context.Context, kind model.Kind, externalIDs []string) (map[string]uint, error) {
	args := m.Called(ctx, kind, externalIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]uint), args.Error(1)
}

func (m *MockIdentifierBridge) ResolveExternalMany(ctx context.Context, kind model.Kind, keys []uint) (map[uint]string, error) {
	args := m.Called(ctx, kind, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]string), args.Error(1)
}

func newCached(t *testing.T) (*miniredis.Miniredis, *MockIdentifierBridge, IdentifierBridge) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	next := &MockIdentifierBridge{}
	return mr, next, NewCachedBridge(next, rdb, time.Hour, zap.NewNop())
}

func TestCachedBridge_NilClientPassesThrough(t *testing.T) {
	next := &MockIdentifierBridge{}
	assert.Same(t, next, NewCachedBridge(next, nil, time.Hour, zap.NewNop()))
}

func TestCachedBridge_ReadThrough(t *testing.T) {
	mr, next, b := newCached(t)
	ctx := context.Background()
	next.On("ResolveInternal", ctx, model.KindTask, "tsk_a").Return(uint(7), nil).Once()

	key, err := b.ResolveInternal(ctx, model.KindTask, "tsk_a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), key)

	// second call and the reverse direction are both served from redis
	key, err = b.ResolveInternal(ctx, model.KindTask, "tsk_a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), key)
	ext, err := b.ResolveExternal(ctx, model.KindTask, 7)
	require.NoError(t, err)
	assert.Equal(t, "tsk_a", ext)

	assert.True(t, mr.Exists("bridge:tasks:ext:tsk_a"))
	assert.True(t, mr.Exists("bridge:tasks:key:7"))
	next.AssertExpectations(t)
}

func TestCachedBridge_MissIsNotCached(t *testing.T) {
	mr, next, b := newCached(t)
	ctx := context.Background()
	next.On("ResolveInternal", ctx, model.KindUser, "usr_x").Return(uint(0), apperr.NotFound("users record not found")).Twice()

	for i := 0; i < 2; i++ {
		_, err := b.ResolveInternal(ctx, model.KindUser, "usr_x")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}
	assert.False(t, mr.Exists("bridge:users:ext:usr_x"))
	next.AssertExpectations(t)
}

func TestCachedBridge_ManyFetchesOnlyMissing(t *testing.T) {
	mr, next, b := newCached(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("bridge:projects:ext:prj_a", "1"))
	next.On("ResolveInternalMany", ctx, model.KindProject, []string{"prj_b", "prj_c"}).
		Return(map[string]uint{"prj_b": 2}, nil).Once()

	got, err := b.ResolveInternalMany(ctx, model.KindProject, []string{"prj_a", "prj_b", "prj_c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"prj_a": 1, "prj_b": 2}, got)
	assert.True(t, mr.Exists("bridge:projects:key:2"))
	assert.False(t, mr.Exists("bridge:projects:ext:prj_c"))
	next.AssertExpectations(t)
}

func TestCachedBridge_ExternalManyFetchesOnlyMissing(t *testing.T) {
	mr, next, b := newCached(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("bridge:users:key:1", "usr_a"))
	next.On("ResolveExternalMany", ctx, model.KindUser, []uint{2}).
		Return(map[uint]string{2: "usr_b"}, nil).Once()

	got, err := b.ResolveExternalMany(ctx, model.KindUser, []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{1: "usr_a", 2: "usr_b"}, got)
	assert.True(t, mr.Exists("bridge:users:ext:usr_b"))
	next.AssertExpectations(t)
}

func TestCachedBridge_RedisDownFallsBack(t *testing.T) {
	mr, next, b := newCached(t)
	ctx := context.Background()
	mr.Close()
	next.On("ResolveInternal", ctx, model.KindAccount, "acc_a").Return(uint(3), nil).Once()
	next.On("ResolveInternalMany", ctx, model.KindAccount, []string{"acc_a"}).Return(map[string]uint{"acc_a": 3}, nil).Once()

	key, err := b.ResolveInternal(ctx, model.KindAccount, "acc_a")
	require.NoError(t, err)
	assert.Equal(t, uint(3), key)

	got, err := b.ResolveInternalMany(ctx, model.KindAccount, []string{"acc_a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"acc_a": 3}, got)
	next.AssertExpectations(t)
}
