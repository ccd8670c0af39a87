package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/oops"
)

const (
	CodeNotFound = "not_found"
	CodeInvalid  = "invalid"
	CodeConflict = "conflict"

	cacheSize = 256
)

var ErrNotFound = errors.New("record not found")

type scanner interface {
	Scan(dest ...any) error
}

// table describes how a row maps onto T. The id column is always first when scanning.
type table[T any] struct {
	name    string
	columns []string
	values  func(*T) []any
	scan    func(scanner) (*T, error)
	setID   func(*T, int64)
	// clone deep-copies rows holding pointers; nil means a plain copy is enough
	clone func(T) T
}

func (t table[T]) selectSQL() string {
	return fmt.Sprintf("SELECT id, %s FROM %s", strings.Join(t.columns, ", "), t.name)
}

func (t table[T]) insertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), placeholders)
}

func (t table[T]) updateSQL() string {
	assignments := make([]string, 0, len(t.columns))
	for _, column := range t.columns {
		assignments = append(assignments, column+" = ?")
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", t.name, strings.Join(assignments, ", "))
}

// Repo is a CRUD repository over one table with a read-through cache of single rows.
type Repo[T any] struct {
	db    *sql.DB
	table table[T]
	cache *lru.Cache[int64, T]

	// generation is bumped on every write so reads started before it never fill the cache
	mu         sync.Mutex
	generation uint64
}

func newRepo[T any](db *sql.DB, t table[T]) *Repo[T] {
	cache, _ := lru.New[int64, T](cacheSize)

	return &Repo[T]{
		db:    db,
		table: t,
		cache: cache,
	}
}

func (r *Repo[T]) errb() oops.OopsErrorBuilder {
	return oops.In("catalog").With("table", r.table.name)
}

func (r *Repo[T]) List(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.table.selectSQL()+" ORDER BY id")
	if err != nil {
		return nil, r.errb().Wrapf(err, "failed to list rows")
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		item, err := r.table.scan(rows)
		if err != nil {
			return nil, r.errb().Wrapf(err, "failed to scan row")
		}
		result = append(result, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, r.errb().Wrapf(err, "failed to iterate rows")
	}

	return result, nil
}

func (r *Repo[T]) Get(ctx context.Context, id int64) (*T, error) {
	if cached, ok := r.cache.Get(id); ok {
		result := r.copy(cached)
		return &result, nil
	}

	generation := r.currentGeneration()

	row := r.db.QueryRowContext(ctx, r.table.selectSQL()+" WHERE id = ?", id)

	item, err := r.table.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.notFound(id)
	}
	if err != nil {
		return nil, r.errb().With("id", id).Wrapf(err, "failed to get row")
	}

	r.remember(generation, id, *item)

	return item, nil
}

// Create inserts item and sets its id.
func (r *Repo[T]) Create(ctx context.Context, item *T) error {
	res, err := r.db.ExecContext(ctx, r.table.insertSQL(), r.table.values(item)...)
	if err != nil {
		return r.execError(err, "failed to insert row")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return r.errb().Wrapf(err, "failed to read inserted id")
	}

	r.table.setID(item, id)

	return nil
}

// Update replaces the row with the given id and sets item's id to it.
func (r *Repo[T]) Update(ctx context.Context, id int64, item *T) error {
	args := append(r.table.values(item), id)

	res, err := r.db.ExecContext(ctx, r.table.updateSQL(), args...)
	if err != nil {
		return r.execError(err, "failed to update row")
	}

	if err := r.requireAffected(res, id); err != nil {
		return err
	}

	r.invalidate(id)
	r.table.setID(item, id)

	return nil
}

func (r *Repo[T]) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table.name), id)
	if err != nil {
		return r.execError(err, "failed to delete row")
	}

	if err := r.requireAffected(res, id); err != nil {
		return err
	}

	r.invalidate(id)

	return nil
}

// Purge drops every cached row.
func (r *Repo[T]) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.cache.Purge()
}

func (r *Repo[T]) currentGeneration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.generation
}

// remember caches item unless a write happened since generation was read.
func (r *Repo[T]) remember(generation uint64, id int64, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.generation != generation {
		return
	}

	r.cache.Add(id, r.copy(item))
}

func (r *Repo[T]) invalidate(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.cache.Remove(id)
}

func (r *Repo[T]) copy(item T) T {
	if r.table.clone == nil {
		return item
	}

	return r.table.clone(item)
}

func (r *Repo[T]) requireAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return r.errb().Wrapf(err, "failed to read affected rows")
	}

	if affected == 0 {
		return r.notFound(id)
	}

	return nil
}

func (r *Repo[T]) notFound(id int64) error {
	return r.errb().
		Code(CodeNotFound).
		With("id", id).
		Wrapf(ErrNotFound, "%s %d", r.table.name, id)
}

func (r *Repo[T]) execError(err error, msg string) error {
	text := err.Error()

	switch {
	case strings.Contains(text, "UNIQUE constraint failed"):
		return r.errb().Code(CodeConflict).Wrapf(err, "%s", msg)
	case strings.Contains(text, "FOREIGN KEY constraint failed"),
		strings.Contains(text, "NOT NULL constraint failed"):
		return r.errb().Code(CodeInvalid).Wrapf(err, "%s", msg)
	default:
		return r.errb().Wrapf(err, "%s", msg)
	}
}
