package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/migrations"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/proposals"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/votes"
)

// SQLiteRepositoryManager backs the governance store with a local SQLite
// file for development and small single-instance deployments.
type SQLiteRepositoryManager struct {
	db        *sql.DB
	users     users.Repository
	proposals proposals.Repository
	votes     votes.Repository
}

func (m *SQLiteRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *SQLiteRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *SQLiteRepositoryManager) Proposals() proposals.Repository {
	return m.proposals
}

func (m *SQLiteRepositoryManager) Votes() votes.Repository {
	return m.votes
}

func (m *SQLiteRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *SQLiteRepositoryManager) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func NewSQLiteRepositoryManager(ctx context.Context, path string) (RepositoryManager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	// Concurrent writers on one SQLite file fight over the lock; a single
	// connection keeps the upsert semantics intact.
	db.SetMaxOpenConns(1)

	m := &SQLiteRepositoryManager{
		db:        db,
		users:     users.NewSQLiteRepository(db),
		proposals: proposals.NewSQLiteRepository(db),
		votes:     votes.NewSQLiteRepository(db),
	}

	if err := m.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
