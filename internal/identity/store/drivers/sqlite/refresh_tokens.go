package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tokend/internal/identity/domain"
	"github.com/aussiebroadwan/tokend/internal/identity/store"
)

type refreshTokensRepo struct {
	q querier
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, subject_id, token_hash, jti, expires_at, used, revoked, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)`,
		t.ID, t.SubjectID, t.TokenHash, t.JTI, t.ExpiresAt.UTC(), now, now,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshToken(
	ctx context.Context,
	tokenHash, subjectID string,
) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT id, subject_id, token_hash, jti, expires_at, used, revoked, created_at, updated_at
		 FROM refresh_tokens
		 WHERE token_hash = ? AND subject_id = ?`,
		tokenHash, subjectID,
	)

	var (
		t             domain.RefreshToken
		used, revoked int
	)
	err := row.Scan(&t.ID, &t.SubjectID, &t.TokenHash, &t.JTI, &t.ExpiresAt,
		&used, &revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.Used = used != 0
	t.Revoked = revoked != 0
	return t, nil
}

// MarkRefreshTokenUsed is the single-use gate: the conditional UPDATE only
// matches a row that is still unconsumed, so under concurrent rotation of
// the same token exactly one caller observes RowsAffected == 1.
func (r *refreshTokensRepo) MarkRefreshTokenUsed(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET used = 1, updated_at = ?
		 WHERE id = ? AND used = 0 AND revoked = 0`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyConsumed
	}
	return nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	return err
}

func (r *refreshTokensRepo) RevokeAllSubjectRefreshTokens(ctx context.Context, subjectID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ?
		 WHERE subject_id = ? AND revoked = 0`,
		time.Now().UTC(), subjectID,
	)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
