package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/onboard/internal/onboard/domain"
	"github.com/aussiebroadwan/onboard/internal/onboard/store"
)

const ownerColumns = `id, user_id, business_name, business_email, referral_code,
	status, created_at, updated_at`

type ownersRepo struct {
	q querier
}

func (r *ownersRepo) CreateOwner(ctx context.Context, o domain.OwnerProfile) error {
	now := time.Now().UTC()
	_, err := r.q.exec(ctx, `INSERT INTO owner_profiles (
		id, user_id, business_name, business_email, referral_code,
		status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.BusinessName, o.BusinessEmail, mapStringNull(o.ReferralCode),
		string(o.Status), now, now,
	)
	return r.q.mapWriteErr(err)
}

func (r *ownersRepo) GetOwnerByID(ctx context.Context, id string) (domain.OwnerProfile, error) {
	row := r.q.queryRow(ctx, `SELECT `+ownerColumns+` FROM owner_profiles WHERE id = ?`, id)
	o, err := scanOwner(row)
	if err != nil {
		return domain.OwnerProfile{}, mapNotFound(err)
	}
	return o, nil
}

func (r *ownersRepo) GetOwnerByUserID(ctx context.Context, userID string) (domain.OwnerProfile, error) {
	row := r.q.queryRow(ctx, `SELECT `+ownerColumns+` FROM owner_profiles WHERE user_id = ?`, userID)
	o, err := scanOwner(row)
	if err != nil {
		return domain.OwnerProfile{}, mapNotFound(err)
	}
	return o, nil
}

func (r *ownersRepo) AdvanceStatus(ctx context.Context, ownerID string, from, to domain.OwnerStatus) error {
	res, err := r.q.exec(ctx, `UPDATE owner_profiles SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to), time.Now().UTC(), ownerID, string(from),
	)
	err = requireRow(res, err)
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	// Zero rows: either the owner is gone or someone else moved it first.
	if _, getErr := r.GetOwnerByID(ctx, ownerID); getErr != nil {
		return getErr
	}
	return store.ErrStatusConflict
}

func scanOwner(row rowScanner) (domain.OwnerProfile, error) {
	var (
		o        domain.OwnerProfile
		referral sql.NullString
		status   string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.BusinessName, &o.BusinessEmail, &referral,
		&status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.OwnerProfile{}, err
	}
	o.ReferralCode = mapNullString(referral)
	o.Status = domain.OwnerStatus(status)
	return o, nil
}
