package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/common"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/dbx"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/models"
)

// SQLiteRepository is the development-mode twin of PostgresRepository.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetByIdentity(ctx context.Context, userID string) (*models.WalletIdentity, error) {
	query :=
		`SELECT user_id, wallet_address FROM users
		 WHERE user_id = ?
		 `

	identity := &models.WalletIdentity{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&identity.UserID, &identity.WalletAddress)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return identity, nil
}

func (r *SQLiteRepository) UpsertWallet(ctx context.Context, userID, walletAddress string) error {
	query :=
		`INSERT INTO users (user_id, wallet_address)
		 VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET wallet_address = excluded.wallet_address
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, walletAddress); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
