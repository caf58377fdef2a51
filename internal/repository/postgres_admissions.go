package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ward-census/internal/domain"
)

// PostgresStore 基于 PostgreSQL 的存储实现
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// 确保实现了接口
var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const admissionColumns = `
	record_id,
	hist_number,
	last_name,
	first_name,
	patronymic,
	birth_date,
	phone,
	address,
	occupation,
	arrival_date,
	arrival_time,
	ward_id,
	doctor_id,
	discharge_datetime,
	caregiver_exists,
	caregiver_fullname,
	caregiver_ward_id,
	caregiver_arrival_date,
	caregiver_departure_date,
	created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdmission(row rowScanner) (*domain.AdmissionRecord, error) {
	var (
		r                                        domain.AdmissionRecord
		wardID, doctorID, discharge              sql.NullString
		cgExists                                 bool
		cgName                                   string
		cgWardID, cgArrivalDate, cgDepartureDate sql.NullString
	)
	err := row.Scan(
		&r.RecordID,
		&r.HistoryNumber,
		&r.LastName,
		&r.FirstName,
		&r.Patronymic,
		&r.BirthDate,
		&r.Phone,
		&r.Address,
		&r.Occupation,
		&r.ArrivalDate,
		&r.ArrivalTime,
		&wardID,
		&doctorID,
		&discharge,
		&cgExists,
		&cgName,
		&cgWardID,
		&cgArrivalDate,
		&cgDepartureDate,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.WardID = fromNull(wardID)
	r.DoctorID = fromNull(doctorID)
	r.Discharge = fromNull(discharge)
	if cgExists {
		r.Caregiver = &domain.Caregiver{
			FullName:      cgName,
			WardID:        fromNull(cgWardID),
			ArrivalDate:   fromNull(cgArrivalDate),
			DepartureDate: fromNull(cgDepartureDate),
		}
	}
	return &r, nil
}

// fromNull coerces NULL and blank text to nil.
func fromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return domain.OptionalString(v.String)
}

func toNull(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// admissionArgs returns the values for every column after record_id, in
// admissionColumns order, without created_at.
func admissionArgs(r *domain.AdmissionRecord) []any {
	cg := r.Caregiver
	if cg == nil {
		cg = &domain.Caregiver{}
	}
	return []any{
		r.HistoryNumber,
		r.LastName,
		r.FirstName,
		r.Patronymic,
		r.BirthDate,
		r.Phone,
		r.Address,
		r.Occupation,
		r.ArrivalDate,
		r.ArrivalTime,
		toNull(r.WardID),
		toNull(r.DoctorID),
		toNull(r.Discharge),
		r.Caregiver != nil,
		cg.FullName,
		toNull(cg.WardID),
		toNull(cg.ArrivalDate),
		toNull(cg.DepartureDate),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *PostgresStore) ListAdmissions(ctx context.Context, filter AdmissionFilter) ([]*domain.AdmissionRecord, error) {
	var (
		where []string
		args  []any
	)
	for _, f := range []struct {
		column string
		prefix string
	}{
		{"hist_number", filter.HistoryNumber},
		{"last_name", filter.LastName},
		{"first_name", filter.FirstName},
		{"patronymic", filter.Patronymic},
	} {
		prefix := strings.TrimSpace(f.prefix)
		if prefix == "" {
			continue
		}
		args = append(args, likeEscaper.Replace(strings.ToLower(prefix))+"%")
		where = append(where, fmt.Sprintf("lower(%s) LIKE $%d", f.column, len(args)))
	}

	query := "SELECT" + admissionColumns + "\nFROM admissions"
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	if filter.NewestFirst {
		query += "\nORDER BY seq DESC"
	} else {
		query += "\nORDER BY seq ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	defer rows.Close()

	var out []*domain.AdmissionRecord
	for rows.Next() {
		r, err := scanAdmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admission: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetAdmission(ctx context.Context, recordID string) (*domain.AdmissionRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT"+admissionColumns+"\nFROM admissions\nWHERE record_id = $1", recordID)
	r, err := scanAdmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}
	return r, nil
}

const insertAdmission = `
	INSERT INTO admissions (` + admissionColumns + `
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

func (s *PostgresStore) CreateAdmissions(ctx context.Context, records []*domain.AdmissionRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now()
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = uuid.NewString()
		args := append([]any{ids[i]}, admissionArgs(r)...)
		args = append(args, now)
		if _, err := tx.ExecContext(ctx, insertAdmission, args...); err != nil {
			return fmt.Errorf("failed to insert admission %q: %w", r.HistoryNumber, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit admissions: %w", err)
	}
	for i, r := range records {
		r.RecordID = ids[i]
		r.CreatedAt = now
	}
	return nil
}

const updateAdmission = `
	UPDATE admissions SET
		hist_number = $2,
		last_name = $3,
		first_name = $4,
		patronymic = $5,
		birth_date = $6,
		phone = $7,
		address = $8,
		occupation = $9,
		arrival_date = $10,
		arrival_time = $11,
		ward_id = $12,
		doctor_id = $13,
		discharge_datetime = $14,
		caregiver_exists = $15,
		caregiver_fullname = $16,
		caregiver_ward_id = $17,
		caregiver_arrival_date = $18,
		caregiver_departure_date = $19
	WHERE record_id = $1`

func (s *PostgresStore) UpdateAdmission(ctx context.Context, record *domain.AdmissionRecord) error {
	args := append([]any{record.RecordID}, admissionArgs(record)...)
	res, err := s.db.ExecContext(ctx, updateAdmission, args...)
	if err != nil {
		return fmt.Errorf("failed to update admission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAdmissions(ctx context.Context, recordIDs []string) (int, error) {
	if len(recordIDs) == 0 {
		return 0, nil
	}
	return s.execCount(ctx, "DELETE FROM admissions WHERE record_id = ANY($1)", pq.Array(recordIDs))
}

func (s *PostgresStore) DeleteAllAdmissions(ctx context.Context) (int, error) {
	return s.execCount(ctx, "DELETE FROM admissions")
}

func (s *PostgresStore) execCount(ctx context.Context, query string, args ...any) (int, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %q: %w", strings.Fields(query)[0], err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
