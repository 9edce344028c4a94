package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type target struct {
	Key string
	Val int
}

func TestSet(t *testing.T) {
	type args struct {
		key  string
		val  *target
		opts []func(*SetOptions)
	}
	ms := NewMemStorage()
	tests := []struct {
		name    string
		args    args
		wantErr error
	}{
		{
			name: "default",
			args: args{key: "key1", val: &target{Key: "key1", Val: 1}},
		}, {
			name:    "duplicate records",
			args:    args{key: "key1", val: &target{Key: "key1", Val: 2}},
			wantErr: ErrDuplicateKey,
		}, {
			name: "overwrite",
			args: args{
				key:  "key1",
				val:  &target{Key: "key1", Val: 3},
				opts: []func(*SetOptions){WithOverwrite()},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Set[target](t.Context(), tt.args.key, tt.args.val, ms, tt.args.opts...)
			if err != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: Set() error = %+v, wantErr %+v", tt.name, err, tt.wantErr)
			}

			if tt.wantErr == nil {
				val, getErr := Get[target](t.Context(), tt.args.key, ms)
				if getErr != nil {
					t.Fatal(getErr)
				}
				if val.Key != tt.args.val.Key || val.Val != tt.args.val.Val {
					t.Errorf("%s: Set() Val = %+v, want %+v", tt.name, val, tt.args.val)
				}
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	ms := NewMemStorage()
	_, err := Get[target](t.Context(), "missing", ms)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_CanceledContext(t *testing.T) {
	ms := NewMemStorage()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Get[target](ctx, "any", ms)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpdate(t *testing.T) {
	ms := NewMemStorage()
	require.NoError(t, Set(t.Context(), "counter", &target{Key: "counter"}, ms))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update[target](context.Background(), "counter", ms, func(v *target) error {
				v.Val++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Get[target](t.Context(), "counter", ms)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Val)

	_, err = Update[target](t.Context(), "missing", ms, func(*target) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	fnErr := errors.New("boom")
	_, err = Update[target](t.Context(), "counter", ms, func(v *target) error {
		v.Val = 0
		return fnErr
	})
	assert.ErrorIs(t, err, fnErr)

	got, err = Get[target](t.Context(), "counter", ms)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Val, "failed update must not be persisted")
}

func TestDeleteAndFilter(t *testing.T) {
	ms := NewMemStorage()
	for i := range 4 {
		key := string(rune('a' + i))
		require.NoError(t, Set(t.Context(), key, &target{Key: key, Val: i}, ms))
	}

	even, err := FilterAll[target](t.Context(), ms, func(v target) bool { return v.Val%2 == 0 })
	require.NoError(t, err)
	assert.Len(t, even, 2)

	require.NoError(t, Delete(t.Context(), "a", ms))
	require.NoError(t, Delete(t.Context(), "a", ms), "delete must be idempotent")
	assert.False(t, ms.IsExist("a"))

	all, err := GetAll[target](t.Context(), ms)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 3, ms.Len())
}
