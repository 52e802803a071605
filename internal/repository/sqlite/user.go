package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yabzec/SnipHub/internal/apperror"
	"github.com/yabzec/SnipHub/internal/model"
	"github.com/yabzec/SnipHub/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, first_name, last_name, email, password_hash,
	created_at, email_verified_at, verification_token`

// CreateUser inserts a new user row. The caller supplies the id and the hashed
// password; CreatedAt defaults to now when unset (the reaper tests backdate
// it). A duplicate email surfaces as a conflict.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, first_name, last_name, email,
			password_hash, created_at, email_verified_at, verification_token)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.EmailVerifiedAt,
		user.VerificationToken,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email already used")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.ID, err)
	}

	return nil
}

// GetUserByID retrieves a user by internal id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getUser(ctx, `WHERE email = ?`, email)
}

// GetUserByVerificationToken retrieves the user holding an unconsumed
// verification token. A consumed token matches no row (it was cleared), so a
// second lookup with the same token returns NotFound.
func (db *DB) GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return db.getUser(ctx, `WHERE verification_token = ?`, token)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.EmailVerifiedAt,
		&u.VerificationToken,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// MarkVerified stamps email_verified_at and clears the verification token in
// one statement, making the token single-use.
func (db *DB) MarkVerified(ctx context.Context, id string, at time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET email_verified_at = ?, verification_token = NULL
		 WHERE id = ?`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: verifying user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// DeleteUser removes a user row. Owned snippets, tags, and folders cascade via
// their foreign keys.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// DeleteUnverifiedBefore removes every unverified account created before the
// cutoff. The reaper runs this once per schedule tick.
func (db *DB) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM users
		 WHERE email_verified_at IS NULL AND created_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting unverified users: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return deleted, nil
}
