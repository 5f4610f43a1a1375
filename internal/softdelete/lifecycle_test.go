package softdelete

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDestroy(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("destroy marks the row instead of deleting it", func(t *testing.T) {
		w := seedWidget(t, db, "doomed")
		require.NoError(t, store.Destroy(ctx, w))

		require.NotNil(t, w.DeletedAt)

		var count int64
		require.NoError(t, db.Table("widgets").Where("id = ?", w.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count, "row must still exist physically")

		_, err := store.Find(ctx, w.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("destroying a destroyed record keeps the original marker", func(t *testing.T) {
		w := seedWidget(t, db, "twice")
		require.NoError(t, store.Destroy(ctx, w))
		first := *w.DeletedAt

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, store.Destroy(ctx, w))

		var stored Widget
		require.NoError(t, db.Table("widgets").Where("id = ?", w.ID).First(&stored).Error)
		require.NotNil(t, stored.DeletedAt)
		assert.WithinDuration(t, first, *stored.DeletedAt, time.Millisecond)
	})

	t.Run("destroy without a primary key fails", func(t *testing.T) {
		err := store.Destroy(ctx, &Widget{Name: "unsaved"})
		assert.Error(t, err)
	})

	t.Run("computed markers advance between destroys", func(t *testing.T) {
		w := seedWidget(t, db, "bouncer")
		require.NoError(t, store.Destroy(ctx, w))
		first := *w.DeletedAt

		require.NoError(t, store.Restore(ctx, w.ID))
		time.Sleep(5 * time.Millisecond)
		require.NoError(t, store.Destroy(ctx, w))

		assert.True(t, w.DeletedAt.After(first))
	})
}

func TestDestroyHooks(t *testing.T) {
	db := setupTestDB(t, &HookedWidget{})
	registry := NewRegistry()
	_, err := Register[HookedWidget](registry, TimestampPolicy("deleted_at"))
	require.NoError(t, err)
	store, err := NewStore[HookedWidget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("hooks run around the marker update", func(t *testing.T) {
		w := &HookedWidget{Name: "observed"}
		require.NoError(t, db.Create(w).Error)

		require.NoError(t, store.Destroy(ctx, w))
		assert.Equal(t, []string{"before", "after"}, w.HookOrder)
		assert.NotNil(t, w.DeletedAt)
	})

	t.Run("a vetoing before hook aborts without touching the row", func(t *testing.T) {
		w := &HookedWidget{Name: "protected", Block: true}
		require.NoError(t, db.Create(w).Error)

		err := store.Destroy(ctx, w)
		assert.ErrorIs(t, err, ErrDestroyAborted)
		assert.ErrorIs(t, err, errDestroyBlocked)
		assert.Equal(t, 0, w.AfterCalls)
		assert.Nil(t, w.DeletedAt)

		found, err := store.Find(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "protected", found.Name)
	})

	t.Run("after hook is skipped when nothing was marked", func(t *testing.T) {
		w := &HookedWidget{Name: "repeat"}
		require.NoError(t, db.Create(w).Error)
		require.NoError(t, store.Destroy(ctx, w))
		require.Equal(t, 1, w.AfterCalls)

		require.NoError(t, store.Destroy(ctx, w))
		assert.Equal(t, 2, w.BeforeCalls)
		assert.Equal(t, 1, w.AfterCalls)
	})

	t.Run("destroy without hooks skips both", func(t *testing.T) {
		w := &HookedWidget{Name: "silent", Block: true}
		require.NoError(t, db.Create(w).Error)

		require.NoError(t, store.DestroyWithoutHooks(ctx, w))
		assert.Equal(t, 0, w.BeforeCalls)
		assert.Equal(t, 0, w.AfterCalls)
		assert.NotNil(t, w.DeletedAt)
	})
}

func TestDestroyAll(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	seedWidget(t, db, "keep")
	a := seedWidget(t, db, "bulk")
	b := seedWidget(t, db, "bulk")
	require.NotEqual(t, a.ID, b.ID)

	n, err := store.DestroyAll(ctx, "name = ?", "bulk")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	live, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "keep", live[0].Name)

	// Already-destroyed rows are not re-marked.
	n, err = store.DestroyAll(ctx, "name = ?", "bulk")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDelete(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("delete removes the row physically", func(t *testing.T) {
		w := seedWidget(t, db, "hard")
		require.NoError(t, store.Delete(ctx, w.ID))

		var count int64
		require.NoError(t, db.Table("widgets").Where("id = ?", w.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("delete reaches destroyed rows", func(t *testing.T) {
		w := seedWidget(t, db, "buried")
		require.NoError(t, store.Destroy(ctx, w))
		require.NoError(t, store.Delete(ctx, w.ID))

		_, err := store.WithDestroyed().Find(ctx, w.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("delete all requires conditions", func(t *testing.T) {
		_, err := store.DeleteAll(ctx)
		assert.Error(t, err)
	})

	t.Run("delete all removes matching rows regardless of marker", func(t *testing.T) {
		seedWidget(t, db, "wipe")
		gone := seedWidget(t, db, "wipe")
		require.NoError(t, store.Destroy(ctx, gone))

		n, err := store.DeleteAll(ctx, "name = ?", "wipe")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})
}

func TestRestore(t *testing.T) {
	db, registry := setupWidgetWorld(t)
	store, err := NewStore[Widget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("restore clears the marker", func(t *testing.T) {
		w := seedWidget(t, db, "phoenix")
		require.NoError(t, store.Destroy(ctx, w))
		require.NoError(t, store.Restore(ctx, w.ID))

		found, err := store.Find(ctx, w.ID)
		require.NoError(t, err)
		assert.Nil(t, found.DeletedAt)
	})

	t.Run("restoring a live record is a no-op", func(t *testing.T) {
		w := seedWidget(t, db, "already-live")
		require.NoError(t, store.Restore(ctx, w.ID))

		found, err := store.Find(ctx, w.ID)
		require.NoError(t, err)
		assert.Nil(t, found.DeletedAt)
	})

	t.Run("restoring a missing id is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Restore(ctx, uint(987654)))
	})
}

func TestFlagPolicy(t *testing.T) {
	db := setupTestDB(t, &Gadget{})
	registry := NewRegistry()
	_, err := Register[Gadget](registry, FlagPolicy("archived"))
	require.NoError(t, err)
	store, err := NewStore[Gadget](db, registry)
	require.NoError(t, err)
	ctx := context.Background()

	g := &Gadget{Name: "flagged"}
	require.NoError(t, db.Create(g).Error)
	keep := &Gadget{Name: "plain"}
	require.NoError(t, db.Create(keep).Error)

	require.NoError(t, store.Destroy(ctx, g))
	assert.True(t, g.Archived)

	live, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "plain", live[0].Name)

	trashed, err := store.DestroyedOnly().All(ctx)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.Equal(t, "flagged", trashed[0].Name)

	require.NoError(t, store.Restore(ctx, g.ID))
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
