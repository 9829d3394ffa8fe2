package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/db"
)

// StudentNumberUniqueConstraint backs student_number uniqueness.
const StudentNumberUniqueConstraint = "students_student_number_key"

// StudentPersonUniqueConstraint enforces one student per person.
const StudentPersonUniqueConstraint = "students_person_id_key"

// StudentRepository handles database operations for enrolled students
type StudentRepository struct {
	db db.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(pool db.Pool) *StudentRepository {
	return &StudentRepository{
		db: pool,
	}
}

const studentColumns = `id, person_id, application_id, student_number, enrollment_date`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.PersonID, &s.ApplicationID, &s.StudentNumber, &s.EnrollmentDate)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByApplicationOrPerson looks up a student linked to either the given
// application or the given person. Either match counts as existing, which is
// what makes enrollment promotion idempotent. Returns (nil, nil) when absent.
func (r *StudentRepository) FindByApplicationOrPerson(ctx context.Context, q db.Querier, applicationID, personID int64) (*models.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE application_id = $1 OR person_id = $2
		LIMIT 1
	`

	student, err := scanStudent(q.QueryRow(ctx, query, applicationID, personID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding student: %w", err)
	}

	return student, nil
}

// Insert creates a new student row and fills in the generated ID.
func (r *StudentRepository) Insert(ctx context.Context, q db.Querier, s *models.Student) error {
	query := `
		INSERT INTO students (person_id, application_id, student_number, enrollment_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := q.QueryRow(ctx, query, s.PersonID, s.ApplicationID, s.StudentNumber, s.EnrollmentDate).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error inserting student: %w", err)
	}

	return nil
}

// UpdateLinks refreshes the person and application references of an existing
// student. The enrollment date is deliberately left untouched.
func (r *StudentRepository) UpdateLinks(ctx context.Context, q db.Querier, s *models.Student) error {
	cmdTag, err := q.Exec(ctx, `
		UPDATE students SET person_id = $1, application_id = $2 WHERE id = $3`,
		s.PersonID, s.ApplicationID, s.ID)
	if err != nil {
		return fmt.Errorf("error updating student links: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return errors.New("student not found")
	}

	return nil
}

// GetByID retrieves a student by ID. Returns (nil, nil) when absent.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	student, err := scanStudent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

// List retrieves students ordered by enrollment date plus the total count.
func (r *StudentRepository) List(ctx context.Context, offset uint64, limit int) ([]*models.Student, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+studentColumns+`
		FROM students
		ORDER BY enrollment_date DESC, id DESC
		OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// UpdateStudentNumber assigns a new student number.
func (r *StudentRepository) UpdateStudentNumber(ctx context.Context, id int64, number string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE students SET student_number = $1 WHERE id = $2`, number, id)
	if err != nil {
		return fmt.Errorf("error updating student number: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return errors.New("student not found")
	}

	return nil
}
