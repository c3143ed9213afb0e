package biometricstorage

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage"
	"github.com/burenotti/go_health_tracker/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_health_tracker/internal/domain"
	"github.com/burenotti/go_health_tracker/internal/domain/biometric"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"time"
)

var (
	ErrRecordExists = fmt.Errorf("%w: biometric record already exists", domain.ErrConflict)
)

type PostgresStorage struct {
	base *pgutil.BasePostgresStorage
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		base: pgutil.NewBasePostgresStorage(db),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, r *biometric.Record) error {
	q := sqlf.InsertInto("biometric_records").
		Set("record_id", r.ID).
		Set("user_id", r.UserID).
		Set("logged_at", r.LoggedAt).
		Set("weight_kg", r.WeightKg).
		Set("height_cm", r.HeightCm).
		Set("bmi", r.BMI)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "biometric_records_pkey") {
			return ErrRecordExists
		}
		return storage.InternalError(err)
	}

	s.base.MarkSeen(r.ID, r)
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt),
) ([]*biometric.Record, error) {
	var tmp struct {
		ID       string
		UserID   string
		LoggedAt time.Time
		WeightKg float64
		HeightCm float64
		BMI      float64
	}

	q := sqlf.From("biometric_records b").
		Select("b.record_id").To(&tmp.ID).
		Select("b.user_id").To(&tmp.UserID).
		Select("b.logged_at").To(&tmp.LoggedAt).
		Select("b.weight_kg").To(&tmp.WeightKg).
		Select("b.height_cm").To(&tmp.HeightCm).
		Select("b.bmi").To(&tmp.BMI)

	modify(q)

	var result []*biometric.Record
	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		result = append(result, &biometric.Record{
			ID:       tmp.ID,
			UserID:   tmp.UserID,
			LoggedAt: tmp.LoggedAt.UTC(),
			WeightKg: tmp.WeightKg,
			HeightCm: tmp.HeightCm,
			BMI:      tmp.BMI,
		})
	})

	if err == nil || pgutil.NoRows(err) {
		return result, nil
	}
	return nil, storage.InternalError(err)
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID, recordID string) (*biometric.Record, error) {
	records, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("b.record_id = ?", recordID).Where("b.user_id = ?", userID)
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, biometric.ErrRecordNotFound
	}
	s.base.MarkSeen(records[0].ID, records[0])
	return records[0], nil
}

// Latest returns the newest observation by logged_at.
func (s *PostgresStorage) Latest(ctx context.Context, userID string) (*biometric.Record, error) {
	records, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("b.user_id = ?", userID).
			OrderBy("b.logged_at DESC", "b.record_id DESC").
			Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, biometric.ErrRecordNotFound
	}
	return records[0], nil
}

// History lists observations newest first.
func (s *PostgresStorage) History(ctx context.Context, userID string, f biometric.HistoryFilter) ([]*biometric.Record, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("b.user_id = ?", userID)
		if f.From != nil {
			stmt.Where("b.logged_at >= ?", *f.From)
		}
		if f.To != nil {
			stmt.Where("b.logged_at <= ?", *f.To)
		}
		stmt.OrderBy("b.logged_at DESC", "b.record_id DESC").Limit(f.Limit)
	})
}

func (s *PostgresStorage) Persist(ctx context.Context, r *biometric.Record) error {
	records, err := s.get(ctx, func(stmt *sqlf.Stmt) {
		stmt.Where("b.record_id = ?", r.ID)
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return biometric.ErrRecordNotFound
	}

	changes, err := diff.Diff(records[0], r)
	if err != nil {
		return storage.InternalError(err)
	}
	if len(changes) != 0 {
		q := sqlf.Update("biometric_records").Where("record_id = ?", r.ID)
		q = pgutil.MakeUpdateQuery(q, changes)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, biometric.ErrRecordNotFound); err != nil {
			return err
		}
	}

	s.base.MarkSeen(r.ID, r)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}
