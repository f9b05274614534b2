package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
)

type fakeStore struct {
	recProducts []domain.Product
	recServices []domain.Service
	popProducts []domain.Product
	popServices []domain.Service
	popCalls    atomic.Int32
	popErr      error
}

func (f *fakeStore) RecommendProducts(ctx context.Context, userID string, limit int) ([]domain.Product, error) {
	return f.recProducts, nil
}

func (f *fakeStore) RecommendServices(ctx context.Context, userID string, limit int) ([]domain.Service, error) {
	return f.recServices, nil
}

func (f *fakeStore) PopularProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	f.popCalls.Add(1)
	if f.popErr != nil {
		return nil, f.popErr
	}
	return f.popProducts, nil
}

func (f *fakeStore) PopularServices(ctx context.Context, limit int) ([]domain.Service, error) {
	return f.popServices, nil
}

func TestForUserWithHistory(t *testing.T) {
	fs := &fakeStore{
		recProducts: []domain.Product{{ID: "p1", Name: "Quinua"}},
		recServices: []domain.Service{{ID: "s1", Name: "Guía de turismo"}},
	}
	e := New(fs, time.Minute)

	r, err := e.ForUser(context.Background(), "u1", 4)
	require.NoError(t, err)
	require.False(t, r.Fallback)
	require.Len(t, r.Products, 1)
	require.Len(t, r.Services, 1)
	require.Equal(t, int32(0), fs.popCalls.Load())
}

func TestForUserFallsBackToPopular(t *testing.T) {
	fs := &fakeStore{
		popProducts: []domain.Product{{ID: "p2", Name: "Café"}},
	}
	e := New(fs, time.Minute)

	r, err := e.ForUser(context.Background(), "u1", 4)
	require.NoError(t, err)
	require.True(t, r.Fallback)
	require.Len(t, r.Products, 1)
}

func TestAnonymousGoesToPopular(t *testing.T) {
	fs := &fakeStore{popProducts: []domain.Product{{ID: "p3"}}}
	e := New(fs, time.Minute)

	r, err := e.ForUser(context.Background(), "", 0)
	require.NoError(t, err)
	require.True(t, r.Fallback)
	require.Equal(t, int32(1), fs.popCalls.Load())
}

func TestPopularIsMemoized(t *testing.T) {
	fs := &fakeStore{popProducts: []domain.Product{{ID: "p4"}}}
	e := New(fs, time.Minute)

	for i := 0; i < 5; i++ {
		_, err := e.ForUser(context.Background(), "", 4)
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), fs.popCalls.Load())
}

func TestPopularMemoPerLimit(t *testing.T) {
	fs := &fakeStore{popProducts: []domain.Product{{ID: "p5"}}}
	e := New(fs, time.Minute)

	_, err := e.ForUser(context.Background(), "", 4)
	require.NoError(t, err)
	_, err = e.ForUser(context.Background(), "", 8)
	require.NoError(t, err)
	require.Equal(t, int32(2), fs.popCalls.Load())
}

func TestPopularErrorIsNotCached(t *testing.T) {
	fs := &fakeStore{popErr: errors.New("db down")}
	e := New(fs, time.Minute)

	_, err := e.ForUser(context.Background(), "", 4)
	require.Error(t, err)

	fs.popErr = nil
	fs.popProducts = []domain.Product{{ID: "p6"}}
	r, err := e.ForUser(context.Background(), "", 4)
	require.NoError(t, err)
	require.Len(t, r.Products, 1)
}

func TestInvalidateFlushesMemo(t *testing.T) {
	fs := &fakeStore{popProducts: []domain.Product{{ID: "p7"}}}
	e := New(fs, time.Minute)

	_, err := e.ForUser(context.Background(), "", 4)
	require.NoError(t, err)
	e.Invalidate()
	_, err = e.ForUser(context.Background(), "", 4)
	require.NoError(t, err)
	require.Equal(t, int32(2), fs.popCalls.Load())
}
