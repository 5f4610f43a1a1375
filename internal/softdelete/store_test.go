package softdelete

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStore_DefaultFiltering(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	live := seedWidget(t, db, "live")
	gone := seedWidget(t, db, "gone")
	require.NoError(t, store.Destroy(ctx, gone))

	t.Run("find skips destroyed rows", func(t *testing.T) {
		found, err := store.Find(ctx, live.ID)
		require.NoError(t, err)
		assert.Equal(t, "live", found.Name)

		_, err = store.Find(ctx, gone.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("all skips destroyed rows", func(t *testing.T) {
		all, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, live.ID, all[0].ID)
	})

	t.Run("count and exists respect the filter", func(t *testing.T) {
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		ok, err := store.Exists(ctx, "name = ?", "gone")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("caller conditions are merged with the filter", func(t *testing.T) {
		_, err := store.First(ctx, "name = ?", "gone")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		found, err := store.First(ctx, "name = ?", "live")
		require.NoError(t, err)
		assert.Equal(t, live.ID, found.ID)
	})
}

func TestStore_ScopeModes(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	seedWidget(t, db, "live")
	gone := seedWidget(t, db, "gone")
	require.NoError(t, store.Destroy(ctx, gone))

	t.Run("with destroyed sees everything", func(t *testing.T) {
		all, err := store.WithDestroyed().All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("destroyed only sees strictly the destroyed subset", func(t *testing.T) {
		all, err := store.DestroyedOnly().All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, gone.ID, all[0].ID)
	})

	t.Run("scope switch does not touch the original store", func(t *testing.T) {
		wide := store.WithDestroyed()
		n, err := wide.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("exclusive scope is bounded by the callback", func(t *testing.T) {
		err := store.WithExclusiveScope(func(s *Store[Widget]) error {
			n, err := s.Count(ctx)
			if err != nil {
				return err
			}
			assert.Equal(t, int64(2), n)
			return nil
		})
		require.NoError(t, err)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("exclusive scope survives a callback error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := store.WithExclusiveScope(func(s *Store[Widget]) error {
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestStore_DerivedOperations(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	seedWidget(t, db, "live")
	gone := seedWidget(t, db, "gone")
	require.NoError(t, store.Destroy(ctx, gone))

	t.Run("with_destroyed suffix suspends the filter", func(t *testing.T) {
		v, err := store.Call(ctx, "count_with_destroyed")
		require.NoError(t, err)
		assert.Equal(t, int64(2), v)

		v, err = store.Call(ctx, "find_with_destroyed", gone.ID)
		require.NoError(t, err)
		assert.Equal(t, gone.ID, v.(*Widget).ID)
	})

	t.Run("destroyed_only suffix inverts the filter", func(t *testing.T) {
		v, err := store.Call(ctx, "all_destroyed_only")
		require.NoError(t, err)
		rows := v.([]Widget)
		require.Len(t, rows, 1)
		assert.Equal(t, gone.ID, rows[0].ID)

		v, err = store.Call(ctx, "exists_destroyed_only", "name = ?", "live")
		require.NoError(t, err)
		assert.False(t, v.(bool))
	})

	t.Run("suffix overrides the store scope for one call", func(t *testing.T) {
		wide := store.WithDestroyed()
		v, err := wide.Call(ctx, "count_destroyed_only")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := store.Call(ctx, "frobnicate")
		assert.ErrorIs(t, err, ErrUnknownOperation)

		_, err = store.Call(ctx, "frobnicate_with_destroyed")
		assert.ErrorIs(t, err, ErrUnknownOperation)
	})

	t.Run("repeated resolution is stable", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			v, err := store.Call(ctx, "count_destroyed_only")
			require.NoError(t, err)
			assert.Equal(t, int64(1), v)
		}
	})
}

func TestStore_RegisterOperation(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	seedWidget(t, db, "alpha")
	gone := seedWidget(t, db, "omega")
	require.NoError(t, store.Destroy(ctx, gone))

	entity := store.Entity()

	t.Run("custom operation gains derived variants", func(t *testing.T) {
		err := entity.RegisterOperation("names", func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			var names []string
			if err := tx.Order("id").Pluck("name", &names).Error; err != nil {
				return nil, err
			}
			return names, nil
		})
		require.NoError(t, err)

		v, err := store.Call(ctx, "names")
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha"}, v)

		v, err = store.Call(ctx, "names_with_destroyed")
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "omega"}, v)

		v, err = store.Call(ctx, "names_destroyed_only")
		require.NoError(t, err)
		assert.Equal(t, []string{"omega"}, v)
	})

	t.Run("reserved suffixes are rejected", func(t *testing.T) {
		err := entity.RegisterOperation("latest_with_destroyed", func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			return nil, nil
		})
		assert.Error(t, err)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		err := entity.RegisterOperation("count", func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("late registration is visible after a failed resolve", func(t *testing.T) {
		_, err := store.Call(ctx, "latest")
		require.ErrorIs(t, err, ErrUnknownOperation)

		err = entity.RegisterOperation("latest", func(ctx context.Context, tx *gorm.DB, conds ...any) (any, error) {
			dest := new(Widget)
			if err := tx.Order("id desc").First(dest).Error; err != nil {
				return nil, err
			}
			return dest, nil
		})
		require.NoError(t, err)

		v, err := store.Call(ctx, "latest")
		require.NoError(t, err)
		assert.Equal(t, "alpha", v.(*Widget).Name)
	})
}
