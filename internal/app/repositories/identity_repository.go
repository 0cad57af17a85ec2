package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/dberrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

const identitiesUsernameKey = "identities_username_key"

// PostgresIdentityRepository handles identity database operations
type PostgresIdentityRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewIdentityRepository creates a new PostgresIdentityRepository
func NewIdentityRepository(pg *db.PostgresDB) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		pg: pg,
		sb: statementBuilder(),
	}
}

// GetByUsername retrieves an identity by its exact username
func (r *PostgresIdentityRepository) GetByUsername(ctx context.Context, username string) (*models.Identity, error) {
	sql, args, err := r.sb.Select("id", "username", "password_hash", "role", "created_at").
		From("identities").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get identity query: %w", err)
	}

	identity := &models.Identity{}
	err = r.pg.Executor(ctx).QueryRow(ctx, sql, args...).Scan(
		&identity.ID, &identity.Username, &identity.PasswordHash, &identity.Role, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.FromContext(ctx).Error().Err(err).Str("username", username).Msg("Error scanning identity row")
		return nil, fmt.Errorf("error getting identity by username: %w", err)
	}

	return identity, nil
}

// Create inserts a new identity
func (r *PostgresIdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	sql, args, err := r.sb.Insert("identities").
		Columns("username", "password_hash", "role").
		Values(identity.Username, identity.PasswordHash, identity.Role).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create identity query: %w", err)
	}

	err = r.pg.Executor(ctx).QueryRow(ctx, sql, args...).Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, identitiesUsernameKey) {
			return ErrDuplicate
		}
		logger.FromContext(ctx).Error().Err(err).Msg("Error executing create identity query")
		return fmt.Errorf("error creating identity: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of an identity
func (r *PostgresIdentityRepository) Update(ctx context.Context, identity *models.Identity) error {
	sql, args, err := r.sb.Update("identities").
		SetMap(map[string]interface{}{
			"password_hash": identity.PasswordHash,
			"role":          identity.Role,
		}).
		Where(squirrel.Eq{"id": identity.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update identity query: %w", err)
	}

	cmdTag, err := r.pg.Executor(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("identityID", identity.ID).Msg("Error executing update identity query")
		return fmt.Errorf("error updating identity: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
