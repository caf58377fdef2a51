package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"ward-census/internal/domain"
)

func (s *PostgresStore) ListWards(ctx context.Context) ([]*domain.Ward, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ward_id, name, sort_order, block
		FROM wards
		ORDER BY block ASC, sort_order ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wards: %w", err)
	}
	defer rows.Close()

	var out []*domain.Ward
	for rows.Next() {
		var w domain.Ward
		if err := rows.Scan(&w.WardID, &w.Name, &w.SortOrder, &w.Block); err != nil {
			return nil, fmt.Errorf("failed to scan ward: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateWard(ctx context.Context, ward *domain.Ward) error {
	if ward.WardID == "" {
		ward.WardID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wards (ward_id, name, sort_order, block) VALUES ($1, $2, $3, $4)`,
		ward.WardID, ward.Name, ward.SortOrder, string(ward.Block),
	)
	if err != nil {
		return fmt.Errorf("failed to create ward: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateWard(ctx context.Context, ward *domain.Ward) error {
	n, err := s.execCount(ctx,
		`UPDATE wards SET name = $2, sort_order = $3, block = $4 WHERE ward_id = $1`,
		ward.WardID, ward.Name, ward.SortOrder, string(ward.Block),
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWards relies on ON DELETE SET NULL to unassign records.
func (s *PostgresStore) DeleteWards(ctx context.Context, wardIDs []string) (int, error) {
	if len(wardIDs) == 0 {
		return 0, nil
	}
	return s.execCount(ctx, "DELETE FROM wards WHERE ward_id = ANY($1)", pq.Array(wardIDs))
}

func (s *PostgresStore) ListDoctors(ctx context.Context) ([]*domain.Doctor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doctor_id, full_name, sort_order
		FROM doctors
		ORDER BY sort_order ASC, full_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	defer rows.Close()

	var out []*domain.Doctor
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(&d.DoctorID, &d.FullName, &d.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan doctor: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateDoctor(ctx context.Context, doctor *domain.Doctor) error {
	if doctor.DoctorID == "" {
		doctor.DoctorID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO doctors (doctor_id, full_name, sort_order) VALUES ($1, $2, $3)`,
		doctor.DoctorID, doctor.FullName, doctor.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateDoctor(ctx context.Context, doctor *domain.Doctor) error {
	n, err := s.execCount(ctx,
		`UPDATE doctors SET full_name = $2, sort_order = $3 WHERE doctor_id = $1`,
		doctor.DoctorID, doctor.FullName, doctor.SortOrder,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDoctors(ctx context.Context, doctorIDs []string) (int, error) {
	if len(doctorIDs) == 0 {
		return 0, nil
	}
	return s.execCount(ctx, "DELETE FROM doctors WHERE doctor_id = ANY($1)", pq.Array(doctorIDs))
}
