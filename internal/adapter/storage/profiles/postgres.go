package profilestorage

import (
	"context"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/profile"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"time"
)

var (
	ErrProfileExists = fmt.Errorf("%w: profile already exists", domain.ErrConflict)
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, p *profile.Profile) error {
	q := sqlf.InsertInto("profiles").
		Set("user_id", p.UserID).
		Set("date_of_birth", p.DateOfBirth).
		Set("gender", string(p.Gender)).
		Set("height_cm", p.HeightCm).
		Set("weight_kg", p.WeightKg).
		Set("activity_level", string(p.ActivityLevel)).
		Set("goal_type", string(p.GoalType)).
		Set("target_weight_kg", p.TargetWeightKg).
		Set("bmi", p.BMI).
		Set("bmr", p.BMR).
		Set("tdee", p.TDEE).
		Set("target_calories", p.TargetCalories).
		Set("created_at", p.CreatedAt).
		Set("updated_at", p.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "profiles_pkey") {
			return ErrProfileExists
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(p.UserID, p)
	return nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.base.MarkSeen(p.UserID, p)
	return p, nil
}

func (s *PostgresStorage) get(ctx context.Context, userID string) (*profile.Profile, error) {
	var r profileRow
	q := sqlf.From("profiles p").
		Where("p.user_id = ?", userID).
		Select("p.user_id").To(&r.UserID).
		Select("p.date_of_birth").To(&r.DateOfBirth).
		Select("p.gender").To(&r.Gender).
		Select("p.height_cm").To(&r.HeightCm).
		Select("p.weight_kg").To(&r.WeightKg).
		Select("p.activity_level").To(&r.ActivityLevel).
		Select("p.goal_type").To(&r.GoalType).
		Select("p.target_weight_kg").To(&r.TargetWeightKg).
		Select("p.bmi").To(&r.BMI).
		Select("p.bmr").To(&r.BMR).
		Select("p.tdee").To(&r.TDEE).
		Select("p.target_calories").To(&r.TargetCalories).
		Select("p.created_at").To(&r.CreatedAt).
		Select("p.updated_at").To(&r.UpdatedAt)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		if pgutil.NoRows(err) {
			return nil, profile.ErrProfileNotFound
		}
		return nil, storage.InternalError(err)
	}

	return r.toDomain(), nil
}

// Persist writes only the columns that differ from the stored row. The
// columns diff ignores are always written.
func (s *PostgresStorage) Persist(ctx context.Context, p *profile.Profile) error {
	dbState, err := s.get(ctx, p.UserID)
	if err != nil {
		return err
	}

	q := sqlf.Update("profiles").
		Where("user_id = ?", p.UserID).
		Set("date_of_birth", p.DateOfBirth).
		Set("target_weight_kg", p.TargetWeightKg).
		Set("updated_at", p.UpdatedAt)

	changes, err := diff.Diff(dbState, p)
	if err != nil {
		return storage.InternalError(err)
	}
	q = pgutil.MakeUpdateQuery(q, changes)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, profile.ErrProfileNotFound); err != nil {
		return err
	}

	s.base.MarkSeen(p.UserID, p)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}

type profileRow struct {
	UserID         string
	DateOfBirth    time.Time
	Gender         string
	HeightCm       float64
	WeightKg       float64
	ActivityLevel  string
	GoalType       string
	TargetWeightKg *float64
	BMI            float64
	BMR            float64
	TDEE           float64
	TargetCalories float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (r *profileRow) toDomain() *profile.Profile {
	return &profile.Profile{
		UserID:         r.UserID,
		DateOfBirth:    domain.Date(r.DateOfBirth),
		Gender:         profile.Gender(r.Gender),
		HeightCm:       r.HeightCm,
		WeightKg:       r.WeightKg,
		ActivityLevel:  profile.ActivityLevel(r.ActivityLevel),
		GoalType:       profile.GoalType(r.GoalType),
		TargetWeightKg: r.TargetWeightKg,
		BMI:            r.BMI,
		BMR:            r.BMR,
		TDEE:           r.TDEE,
		TargetCalories: r.TargetCalories,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
