package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// LoginTokenExpiry is how long a magic-link token stays valid.
const LoginTokenExpiry = 15 * time.Minute

// CreateLoginToken creates a single-use magic-link token for an email and
// returns it in "id.secret" form. Only a bcrypt hash of the secret is
// stored, so a database leak cannot be replayed into a login.
func CreateLoginToken(ctx context.Context, db *sql.DB, email string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating login secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing login secret: %w", err)
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx,
		`INSERT INTO login_tokens (id, email, secret_hash, expires_at) VALUES (?, ?, ?, ?)`,
		id, email, string(hash), sqliteTime(time.Now().Add(LoginTokenExpiry)),
	)
	if err != nil {
		return "", fmt.Errorf("storing login token: %w", err)
	}

	// Opportunistically clean up expired tokens.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM login_tokens WHERE expires_at < ?`, sqliteTime(time.Now()),
	)

	return id + "." + secret, nil
}

// ConsumeLoginToken validates and burns a magic-link token, returning the
// email it was issued for. The burn is a conditional update on used_at, so
// two concurrent confirms of the same link can only log in once.
func ConsumeLoginToken(ctx context.Context, db *sql.DB, token string) (string, error) {
	id, secret, ok := strings.Cut(token, ".")
	if !ok || id == "" || secret == "" {
		return "", fmt.Errorf("malformed login token")
	}

	var email, hash string
	var expiresAt time.Time
	var usedAt sql.NullTime
	err := db.QueryRowContext(ctx,
		`SELECT email, secret_hash, expires_at, used_at FROM login_tokens WHERE id = ?`, id,
	).Scan(&email, &hash, &expiresAt, &usedAt)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("unknown login token")
	}
	if err != nil {
		return "", fmt.Errorf("reading login token: %w", err)
	}

	if usedAt.Valid {
		return "", fmt.Errorf("login token already used")
	}
	if time.Now().After(expiresAt) {
		return "", fmt.Errorf("login token expired")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
		return "", fmt.Errorf("invalid login token")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE login_tokens SET used_at = CURRENT_TIMESTAMP WHERE id = ? AND used_at IS NULL`, id,
	)
	if err != nil {
		return "", fmt.Errorf("consuming login token: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return "", fmt.Errorf("login token already used")
	}

	return email, nil
}

// RevokeToken adds a session token's JTI to the revocation list.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, sqliteTime(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, sqliteTime(time.Now()),
	)

	return nil
}

// IsTokenRevoked checks if a session token's JTI has been revoked.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}
