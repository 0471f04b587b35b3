package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, user_id, sex, birthdate, district, height_cm, marital_status, religion, caste,
mother_tongue, education, occupation, annual_income, about_me, family_details, hobbies, expectations,
moderation_status, created_at, updated_at`

// UpsertTx creates or replaces the caller's profile in the given
// transaction. The returned bool is true when a new row was created.
func (r *ProfileRepo) UpsertTx(ctx context.Context, tx pgx.Tx, p model.Profile) (model.Profile, bool, error) {
	var heightCM *float64
	if p.HeightCM > 0 {
		heightCM = &p.HeightCM
	}

	row := tx.QueryRow(ctx, `
INSERT INTO profiles (
	user_id, sex, birthdate, district, height_cm, marital_status, religion, caste,
	mother_tongue, education, occupation, annual_income, about_me, family_details,
	hobbies, expectations, moderation_status, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 'PENDING', NOW(), NOW())
ON CONFLICT (user_id) DO UPDATE SET
	sex = EXCLUDED.sex,
	birthdate = EXCLUDED.birthdate,
	district = EXCLUDED.district,
	height_cm = EXCLUDED.height_cm,
	marital_status = EXCLUDED.marital_status,
	religion = EXCLUDED.religion,
	caste = EXCLUDED.caste,
	mother_tongue = EXCLUDED.mother_tongue,
	education = EXCLUDED.education,
	occupation = EXCLUDED.occupation,
	annual_income = EXCLUDED.annual_income,
	about_me = EXCLUDED.about_me,
	family_details = EXCLUDED.family_details,
	hobbies = EXCLUDED.hobbies,
	expectations = EXCLUDED.expectations,
	moderation_status = 'PENDING',
	updated_at = NOW()
RETURNING `+profileColumns+`, (xmax = 0) AS inserted
`,
		p.UserID, p.Sex, p.Birthdate.UTC(), string(p.District), heightCM,
		p.MaritalStatus, p.Religion, p.Caste, p.MotherTongue, p.Education,
		p.Occupation, p.AnnualIncome, p.AboutMe, p.FamilyDetails, p.Hobbies,
		p.Expectations,
	)

	var (
		saved    model.Profile
		inserted bool
	)
	if err := scanProfileWith(row, &saved, &inserted); err != nil {
		return model.Profile{}, false, fmt.Errorf("upsert profile: %w", err)
	}

	return saved, inserted, nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE user_id = $1
`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile by user id: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, profileID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM profiles
WHERE id = $1
`, profileID)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile by id: %w", err)
	}

	return profile, nil
}

// SetModerationStatus returns the owning user id so callers can notify
// the profile owner.
func (r *ProfileRepo) SetModerationStatus(ctx context.Context, profileID int64, status enums.ModerationStatus) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var userID int64
	err := r.pool.QueryRow(ctx, `
UPDATE profiles
SET moderation_status = $2, updated_at = NOW()
WHERE id = $1
RETURNING user_id
`, profileID, string(status)).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrProfileNotFound
		}
		return 0, fmt.Errorf("set profile moderation status: %w", err)
	}

	return userID, nil
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var p model.Profile
	var heightCM *float64
	err := row.Scan(
		&p.ID, &p.UserID, &p.Sex, &p.Birthdate, &p.District, &heightCM,
		&p.MaritalStatus, &p.Religion, &p.Caste, &p.MotherTongue,
		&p.Education, &p.Occupation, &p.AnnualIncome, &p.AboutMe,
		&p.FamilyDetails, &p.Hobbies, &p.Expectations, &p.ModerationStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if heightCM != nil {
		p.HeightCM = *heightCM
	}
	return p, err
}

func scanProfileWith(row pgx.Row, p *model.Profile, inserted *bool) error {
	var heightCM *float64
	err := row.Scan(
		&p.ID, &p.UserID, &p.Sex, &p.Birthdate, &p.District, &heightCM,
		&p.MaritalStatus, &p.Religion, &p.Caste, &p.MotherTongue,
		&p.Education, &p.Occupation, &p.AnnualIncome, &p.AboutMe,
		&p.FamilyDetails, &p.Hobbies, &p.Expectations, &p.ModerationStatus,
		&p.CreatedAt, &p.UpdatedAt, inserted,
	)
	if heightCM != nil {
		p.HeightCM = *heightCM
	}
	return err
}
