package softdelete

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Fixture schema used across the package tests: widgets own parts, parts own
// rivets, and manuals reference a widget without being dependent on it.

type Widget struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Name      string     `gorm:"size:255;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

type Part struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	WidgetID  uint       `gorm:"column:widget_id;not null;index"`
	Label     string     `gorm:"size:255;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

type Rivet struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	PartID    uint       `gorm:"column:part_id;not null;index"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

type Manual struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	WidgetID  uint       `gorm:"column:widget_id;not null;index"`
	Title     string     `gorm:"size:255;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
}

// Gadget uses a boolean marker instead of a timestamp.
type Gadget struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"size:255;not null"`
	Archived bool   `gorm:"column:archived;not null;default:false"`
}

var errDestroyBlocked = errors.New("destroy blocked")

// HookedWidget records its destroy-hook invocations and can veto a destroy.
type HookedWidget struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Name      string     `gorm:"size:255;not null"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`

	Block       bool     `gorm:"-"`
	HookOrder   []string `gorm:"-"`
	BeforeCalls int      `gorm:"-"`
	AfterCalls  int      `gorm:"-"`
}

func (h *HookedWidget) BeforeDestroy(tx *gorm.DB) error {
	h.BeforeCalls++
	h.HookOrder = append(h.HookOrder, "before")
	if h.Block {
		return errDestroyBlocked
	}
	return nil
}

func (h *HookedWidget) AfterDestroy(tx *gorm.DB) error {
	h.AfterCalls++
	h.HookOrder = append(h.HookOrder, "after")
	return nil
}

func setupTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(models...)
	require.NoError(t, err)

	return db
}

// setupWidgetWorld registers the full fixture schema: widgets with dependent
// parts and rivets, plus non-dependent manuals.
func setupWidgetWorld(t *testing.T) (*gorm.DB, *Registry) {
	t.Helper()

	db := setupTestDB(t, &Widget{}, &Part{}, &Rivet{}, &Manual{})
	registry := NewRegistry()

	widgets, err := Register[Widget](registry, TimestampPolicy("deleted_at"))
	require.NoError(t, err)
	parts, err := Register[Part](registry, TimestampPolicy("deleted_at"))
	require.NoError(t, err)
	_, err = Register[Rivet](registry, TimestampPolicy("deleted_at"))
	require.NoError(t, err)
	_, err = Register[Manual](registry, TimestampPolicy("deleted_at"))
	require.NoError(t, err)

	err = widgets.RegisterRelationship(Relationship{
		Name:             "parts",
		Target:           &Part{},
		Kind:             HasMany,
		ForeignKey:       "widget_id",
		Reciprocal:       "widget",
		CascadeOnDestroy: true,
	})
	require.NoError(t, err)

	err = parts.RegisterRelationship(Relationship{
		Name:             "rivets",
		Target:           &Rivet{},
		Kind:             HasMany,
		ForeignKey:       "part_id",
		CascadeOnDestroy: true,
	})
	require.NoError(t, err)

	err = widgets.RegisterRelationship(Relationship{
		Name:       "manuals",
		Target:     &Manual{},
		Kind:       HasMany,
		ForeignKey: "widget_id",
		Reciprocal: "widget",
	})
	require.NoError(t, err)

	return db, registry
}

func seedWidget(t *testing.T, db *gorm.DB, name string) *Widget {
	t.Helper()
	w := &Widget{Name: name}
	require.NoError(t, db.Create(w).Error)
	return w
}

func seedPart(t *testing.T, db *gorm.DB, widgetID uint, label string) *Part {
	t.Helper()
	p := &Part{WidgetID: widgetID, Label: label}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedRivet(t *testing.T, db *gorm.DB, partID uint) *Rivet {
	t.Helper()
	r := &Rivet{PartID: partID}
	require.NoError(t, db.Create(r).Error)
	return r
}
