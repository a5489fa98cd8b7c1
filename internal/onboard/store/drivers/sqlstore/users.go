package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/domain"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
)

const userColumns = `id, name, email, phone, password_hash, role,
	otp_hash, otp_purpose, otp_expires_at, otp_attempts, created_at, updated_at`

type usersRepo struct {
	q querier
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.q.exec(ctx, `INSERT INTO users (
		id, name, email, phone, password_hash, role,
		otp_hash, otp_purpose, otp_expires_at, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role),
		mapOptionalString(u.OTPHash), mapOptionalPurpose(u.OTPPurpose), mapOptionalTime(u.OTPExpiresAt),
		now, now,
	)
	return r.q.mapWriteErr(err)
}

func (r *usersRepo) SetOTP(ctx context.Context, userID string, otp store.OTPUpdate) error {
	res, err := r.q.exec(ctx, `UPDATE users
		SET otp_hash = ?, otp_purpose = ?, otp_expires_at = ?, otp_attempts = 0, updated_at = ?
		WHERE id = ?`,
		otp.Hash, string(otp.Purpose), otp.ExpiresAt.UTC(), time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) ClearOTP(ctx context.Context, userID string) error {
	res, err := r.q.exec(ctx, `UPDATE users
		SET otp_hash = NULL, otp_purpose = NULL, otp_expires_at = NULL, otp_attempts = 0, updated_at = ?
		WHERE id = ?`,
		time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) SpendOTPAttempt(ctx context.Context, userID string, limit int) error {
	res, err := r.q.exec(ctx, `UPDATE users SET otp_attempts = otp_attempts + 1
		WHERE id = ? AND otp_hash IS NOT NULL AND otp_attempts < ?`,
		userID, limit,
	)
	err = requireRow(res, err)
	if errors.Is(err, store.ErrNotFound) {
		return store.ErrAttemptsExhausted
	}
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	res, err := r.q.exec(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), userID,
	)
	return requireRow(res, err)
}

func (r *usersRepo) ClearExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.exec(ctx, `UPDATE users
		SET otp_hash = NULL, otp_purpose = NULL, otp_expires_at = NULL, otp_attempts = 0
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at < ?`,
		before.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// requireRow turns a zero-row UPDATE into store.ErrNotFound.
func requireRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		role      string
		otpHash   sql.NullString
		purpose   sql.NullString
		otpExpiry sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role,
		&otpHash, &purpose, &otpExpiry, &u.OTPAttempts, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.OTPHash = mapNullStringPtr(otpHash)
	if purpose.Valid {
		p := domain.OTPPurpose(purpose.String)
		u.OTPPurpose = &p
	}
	u.OTPExpiresAt = mapNullTimePtr(otpExpiry)
	return u, nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapOptionalPurpose(p *domain.OTPPurpose) sql.NullString {
	if p == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
