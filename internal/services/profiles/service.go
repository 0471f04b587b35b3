package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	"github.com/mangala-lk/backend/internal/domain/rules"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("invalid profile input")
	ErrNotFound   = errors.New("profile not found")
	ErrForbidden  = errors.New("profile not visible")
)

type Store interface {
	UpsertTx(ctx context.Context, tx pgx.Tx, p model.Profile) (model.Profile, bool, error)
	GetByUserID(ctx context.Context, userID int64) (model.Profile, error)
	GetByID(ctx context.Context, profileID int64) (model.Profile, error)
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	SetProfileCompleted(ctx context.Context, tx pgx.Tx, userID int64, completed bool) error
}

type Service struct {
	store Store
	users UserStore
	runTx func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	now   func() time.Time
}

func NewService(pool *pgxpool.Pool, store Store, users UserStore) *Service {
	return &Service{
		store: store,
		users: users,
		runTx: func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
			return pgrepo.WithTx(ctx, pool, fn)
		},
		now: time.Now,
	}
}

type UpsertInput struct {
	Sex           string
	Birthdate     time.Time
	District      string
	HeightCM      float64
	MaritalStatus string
	Religion      string
	Caste         string
	MotherTongue  string
	Education     string
	Occupation    string
	AnnualIncome  string
	AboutMe       string
	FamilyDetails string
	Hobbies       string
	Expectations  string
}

// Upsert creates or replaces the caller's profile. Any successful write
// resets moderation to PENDING and marks the account profile-complete.
func (s *Service) Upsert(ctx context.Context, userID int64, in UpsertInput) (model.Profile, error) {
	if s.store == nil || s.users == nil {
		return model.Profile{}, fmt.Errorf("profile dependencies are not configured")
	}
	if userID <= 0 {
		return model.Profile{}, fmt.Errorf("invalid user id: %w", ErrValidation)
	}

	profile, err := s.normalize(userID, in)
	if err != nil {
		return model.Profile{}, err
	}

	var saved model.Profile
	err = s.runTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var txErr error
		saved, _, txErr = s.store.UpsertTx(ctx, tx, profile)
		if txErr != nil {
			return txErr
		}
		return s.users.SetProfileCompleted(ctx, tx, userID, true)
	})
	if err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	saved.Age = rules.AgeYears(saved.Birthdate, s.now())
	return saved, nil
}

// GetOwn returns the caller's profile regardless of moderation status.
func (s *Service) GetOwn(ctx context.Context, userID int64) (model.Profile, error) {
	profile, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get own profile: %w", err)
	}

	profile.Age = rules.AgeYears(profile.Birthdate, s.now())
	return profile, nil
}

// Get returns the profile of another member. Non-admin viewers only see
// approved profiles of active accounts; anything else reads as not found
// so the endpoint does not leak which profiles exist.
func (s *Service) Get(ctx context.Context, viewerID int64, viewerRole enums.Role, ownerUserID int64) (model.Profile, error) {
	profile, err := s.store.GetByUserID(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	if viewerID != ownerUserID && viewerRole != enums.RoleAdmin {
		if profile.ModerationStatus != enums.ModerationStatusApproved {
			return model.Profile{}, ErrNotFound
		}
		owner, err := s.users.GetByID(ctx, ownerUserID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrUserNotFound) {
				return model.Profile{}, ErrNotFound
			}
			return model.Profile{}, fmt.Errorf("get profile owner: %w", err)
		}
		if owner.Status != enums.AccountStatusActive {
			return model.Profile{}, ErrNotFound
		}
	}

	profile.Age = rules.AgeYears(profile.Birthdate, s.now())
	return profile, nil
}

func (s *Service) normalize(userID int64, in UpsertInput) (model.Profile, error) {
	sex := strings.ToUpper(strings.TrimSpace(in.Sex))
	if sex != "MALE" && sex != "FEMALE" {
		return model.Profile{}, fmt.Errorf("sex must be MALE or FEMALE: %w", ErrValidation)
	}

	if in.Birthdate.IsZero() || !in.Birthdate.Before(s.now()) {
		return model.Profile{}, fmt.Errorf("birthdate must be in the past: %w", ErrValidation)
	}
	if rules.AgeYears(in.Birthdate, s.now()) < rules.MinProfileAge {
		return model.Profile{}, fmt.Errorf("must be at least %d years old: %w", rules.MinProfileAge, ErrValidation)
	}

	district, ok := enums.ParseDistrict(in.District)
	if !ok {
		return model.Profile{}, fmt.Errorf("unknown district %q: %w", in.District, ErrValidation)
	}

	if in.HeightCM != 0 && (in.HeightCM < 50 || in.HeightCM > 300) {
		return model.Profile{}, fmt.Errorf("height out of range: %w", ErrValidation)
	}

	maritalStatus := strings.TrimSpace(in.MaritalStatus)
	religion := strings.TrimSpace(in.Religion)
	if maritalStatus == "" || religion == "" {
		return model.Profile{}, fmt.Errorf("marital status and religion are required: %w", ErrValidation)
	}

	return model.Profile{
		UserID:        userID,
		Sex:           sex,
		Birthdate:     in.Birthdate.UTC(),
		District:      district,
		HeightCM:      in.HeightCM,
		MaritalStatus: maritalStatus,
		Religion:      religion,
		Caste:         strings.TrimSpace(in.Caste),
		MotherTongue:  strings.TrimSpace(in.MotherTongue),
		Education:     strings.TrimSpace(in.Education),
		Occupation:    strings.TrimSpace(in.Occupation),
		AnnualIncome:  strings.TrimSpace(in.AnnualIncome),
		AboutMe:       strings.TrimSpace(in.AboutMe),
		FamilyDetails: strings.TrimSpace(in.FamilyDetails),
		Hobbies:       strings.TrimSpace(in.Hobbies),
		Expectations:  strings.TrimSpace(in.Expectations),
	}, nil
}
