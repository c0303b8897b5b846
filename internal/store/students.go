package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/KamalSai3/KS-Events/internal/models"
)

// CreateStudent inserts a new student. USN and email are each globally
// unique; a clash with an existing row returns ErrDuplicate.
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	exists, err := s.Bun.NewSelect().
		Model((*models.Student)(nil)).
		WhereOr("usn = ?", student.USN).
		WhereOr("email = ?", student.Email).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	_, err = s.Bun.NewInsert().Model(student).Exec(ctx)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) GetStudentByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	err := s.Bun.NewSelect().
		Model(&student).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &student, nil
}

func (s *Store) GetStudentByUSN(ctx context.Context, usn string) (*models.Student, error) {
	var student models.Student
	err := s.Bun.NewSelect().
		Model(&student).
		Where("usn = ?", usn).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &student, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := s.Bun.NewSelect().
		Model(&students).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// UpdateStudent applies a validated patch and refreshes updated_at.
func (s *Store) UpdateStudent(ctx context.Context, id string, patch *models.StudentPatch) (*models.Student, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	student, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(student)
	student.UpdatedAt = time.Now().UTC()

	_, err = s.Bun.NewUpdate().
		Model(student).
		Column("name", "email", "phone", "semester", "branch", "is_active", "updated_at").
		Where("id = ?", id).
		Exec(ctx)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student and cascades to their registrations.
func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	if _, err := s.GetStudentByID(ctx, id); err != nil {
		return err
	}
	return s.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Registration)(nil)).
			Where("student_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Student)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
