package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/migrations"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/proposals"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/users"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/votes"
)

type PostgresRepositoryManager struct {
	db        *sql.DB
	users     users.Repository
	proposals proposals.Repository
	votes     votes.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Proposals() proposals.Repository {
	return m.proposals
}

func (m *PostgresRepositoryManager) Votes() votes.Repository {
	return m.votes
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func NewPostgresRepositoryManager(ctx context.Context, dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:        db,
		users:     users.NewPostgresRepository(db),
		proposals: proposals.NewPostgresRepository(db),
		votes:     votes.NewPostgresRepository(db),
	}

	if err := m.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
