package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"campusbot/app/config"

	_ "embed"

	"github.com/samber/do"
	"github.com/samber/oops"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Service struct {
	db *sql.DB

	Courses          *Repo[Course]
	Faculty          *Repo[Faculty]
	ResearchAreas    *Repo[ResearchArea]
	GraduatePrograms *Repo[GraduateProgram]
	Uploads          *Repo[Upload]
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	ctx := do.MustInvoke[context.Context](di)

	svc, err := Open(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	if err := svc.Migrate(ctx); err != nil {
		_ = svc.db.Close()
		return nil, err
	}

	return svc, nil
}

// Open opens the SQLite database at path without applying the schema.
func Open(path string) (*Service, error) {
	errb := oops.In("catalog").With("path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errb.Wrapf(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errb.Wrapf(err, "failed to open database")
	}

	// one writer at a time; also keeps per-connection pragmas in effect
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errb.With("pragma", pragma).Wrapf(err, "failed to set pragma")
		}
	}

	return &Service{
		db:               db,
		Courses:          newRepo(db, courseTable),
		Faculty:          newRepo(db, facultyTable),
		ResearchAreas:    newRepo(db, researchAreaTable),
		GraduatePrograms: newRepo(db, graduateProgramTable),
		Uploads:          newRepo(db, uploadTable),
	}, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (s *Service) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return oops.In("catalog").Wrapf(err, "failed to begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return oops.In("catalog").With("statement", i).Wrapf(err, "failed to apply schema")
		}
	}

	if err := tx.Commit(); err != nil {
		return oops.In("catalog").Wrapf(err, "failed to commit migration")
	}

	slog.Debug("Catalog schema applied")

	return nil
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.PingContext: %w", err)
	}

	return nil
}

// DeleteFaculty removes a faculty member and drops cached research areas, whose lead may have been cleared.
func (s *Service) DeleteFaculty(ctx context.Context, id int64) error {
	if err := s.Faculty.Delete(ctx, id); err != nil {
		return err
	}

	s.ResearchAreas.Purge()

	return nil
}

func (s *Service) Shutdown() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("db.Close: %w", err)
	}

	return nil
}
