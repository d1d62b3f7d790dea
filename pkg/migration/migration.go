// Package migration runs and tracks schema migrations.
//
// Migrations register themselves from init():
//
//	func init() {
//	    migration.Register("20260101000000_create_roles_table", &CreateRolesTable{})
//	}
//
// and are applied in name order, one batch per Run:
//
//	churchcafe migrate             // run all pending
//	churchcafe migrate:rollback    // rollback last batch
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/pkg/logger"
)

// Migration is the interface every migration must implement.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Entry is a named migration.
type Entry struct {
	Name      string
	Migration Migration
}

type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "churchcafe_migrations" }

var (
	registryMu sync.Mutex
	registry   []Entry
)

// Register adds a migration to the global registry. name should be
// timestamp-prefixed so lexical order is chronological.
func Register(name string, m Migration) {
	registryMu.Lock()
	registry = append(registry, Entry{Name: name, Migration: m})
	registryMu.Unlock()
}

// Registered returns a copy of the global registry sorted by name.
func Registered() []Entry {
	registryMu.Lock()
	out := make([]Entry, len(registry))
	copy(out, registry)
	registryMu.Unlock()
	sortEntries(out)
	return out
}

// ErrNoMigrations is returned when Run is called with an empty set.
var ErrNoMigrations = errors.New("no migrations registered")

// Runner executes and tracks migrations.
type Runner struct {
	db      *gorm.DB
	entries []Entry
	out     io.Writer
}

// New creates a Runner over the registered migrations. Progress lines go to
// out; pass io.Discard to silence them.
func New(db *gorm.DB, out io.Writer) *Runner {
	return NewWith(db, out, Registered())
}

// NewWith creates a Runner over an explicit migration set.
func NewWith(db *gorm.DB, out io.Writer, entries []Entry) *Runner {
	if out == nil {
		out = io.Discard
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sortEntries(sorted)
	return &Runner{db: db, entries: sorted, out: out}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&migrationRecord{})
}

func (r *Runner) pending(ctx context.Context) ([]Entry, error) {
	var ran []migrationRecord
	if err := r.db.WithContext(ctx).Find(&ran).Error; err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(ran))
	for _, rec := range ran {
		done[rec.Name] = true
	}
	var out []Entry
	for _, e := range r.entries {
		if !done[e.Name] {
			out = append(out, e)
		}
	}
	return out, nil
}

// Run executes all pending migrations in a single batch.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.entries) == 0 {
		return ErrNoMigrations
	}
	if err := r.ensureTable(ctx); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	pending, err := r.pending(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch pending: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return err
	}
	batch++

	db := r.db.WithContext(ctx)
	for _, e := range pending {
		fmt.Fprintf(r.out, "  Migrating: %s\n", e.Name)
		if err := e.Migration.Up(db); err != nil {
			return fmt.Errorf("migration: %s up: %w", e.Name, err)
		}
		if err := db.Create(&migrationRecord{Name: e.Name, Batch: batch}).Error; err != nil {
			return fmt.Errorf("migration: record %s: %w", e.Name, err)
		}
		fmt.Fprintf(r.out, "  Migrated:  %s\n", e.Name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return nil
}

// Rollback reverses all migrations from the most recent batch.
func (r *Runner) Rollback(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return err
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}

	db := r.db.WithContext(ctx)
	var records []migrationRecord
	if err := db.Where("batch = ?", batch).Order("id desc").Find(&records).Error; err != nil {
		return err
	}

	byName := make(map[string]Migration, len(r.entries))
	for _, e := range r.entries {
		byName[e.Name] = e.Migration
	}

	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  Rolling back: %s\n", rec.Name)
		if err := m.Down(db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := db.Delete(&rec).Error; err != nil {
			return err
		}
	}
	logger.Info("migration: rolled back", "batch", batch, "count", len(records))
	return nil
}

// Status reports whether each migration has run.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	var ran []migrationRecord
	if err := r.db.WithContext(ctx).Find(&ran).Error; err != nil {
		return nil, err
	}
	byName := make(map[string]migrationRecord, len(ran))
	for _, rec := range ran {
		byName[rec.Name] = rec
	}

	out := make([]Status, 0, len(r.entries))
	for _, e := range r.entries {
		rec, ok := byName[e.Name]
		out = append(out, Status{Name: e.Name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

// PrintStatus writes the Status table to the runner's output.
func (r *Runner) PrintStatus(ctx context.Context) error {
	rows, err := r.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%-56s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("-", 74))
	for _, s := range rows {
		if s.Ran {
			fmt.Fprintf(r.out, "%-56s  %-8s  %d\n", s.Name, "Ran", s.Batch)
		} else {
			fmt.Fprintf(r.out, "%-56s  %-8s  -\n", s.Name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var batch int
	err := r.db.WithContext(ctx).Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0)").Scan(&batch).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return batch, nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}
