package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/email"
)

func newEnrollmentServiceForTest(mock pgxmock.PgxPoolIface) *EnrollmentService {
	return NewEnrollmentService(
		mock,
		repositories.NewStudentRepository(mock),
		repositories.NewPersonRepository(mock),
		email.NewEmailService(email.SMTPConfig{}, zerolog.Nop()),
	)
}

func TestEnrollmentService_Promote_ReusesExistingStudent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newEnrollmentServiceForTest(mock)

	enrolledAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	app := &models.Application{ID: 9, PersonID: 5, Status: models.StatusEnrolled}

	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(9), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "person_id", "application_id", "student_number", "enrollment_date"}).
			AddRow(int64(3), int64(5), (*int64)(nil), "", enrolledAt))
	mock.ExpectExec(`UPDATE students SET person_id`).
		WithArgs(int64(5), pgxmock.AnyArg(), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	student, err := svc.Promote(context.Background(), mock, app)
	require.NoError(t, err)
	assert.Equal(t, int64(3), student.ID)
	require.NotNil(t, student.ApplicationID)
	assert.Equal(t, int64(9), *student.ApplicationID)
	// Re-promotion keeps the original enrollment date
	assert.Equal(t, enrolledAt, student.EnrollmentDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Promote_CreatesStudent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newEnrollmentServiceForTest(mock)

	app := &models.Application{ID: 9, PersonID: 5, Status: models.StatusEnrolled}

	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(9), int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO students`).
		WithArgs(int64(5), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	student, err := svc.Promote(context.Background(), mock, app)
	require.NoError(t, err)
	assert.Equal(t, int64(7), student.ID)
	assert.Equal(t, int64(5), student.PersonID)
	assert.WithinDuration(t, time.Now(), student.EnrollmentDate, 2*time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_Promote_ConcurrentInsertFallsBackToLookup(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newEnrollmentServiceForTest(mock)

	app := &models.Application{ID: 9, PersonID: 5, Status: models.StatusEnrolled}
	enrolledAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	appID := int64(9)

	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(9), int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO students`).
		WithArgs(int64(5), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: repositories.StudentPersonUniqueConstraint})
	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(9), int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "person_id", "application_id", "student_number", "enrollment_date"}).
			AddRow(int64(3), int64(5), &appID, "", enrolledAt))

	student, err := svc.Promote(context.Background(), mock, app)
	require.NoError(t, err)
	assert.Equal(t, int64(3), student.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_GetStudent_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newEnrollmentServiceForTest(mock)

	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(44)).
		WillReturnError(pgx.ErrNoRows)

	_, err = svc.GetStudent(context.Background(), 44)
	assert.True(t, errors.Is(err, apperrors.ErrStudentNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentService_AssignStudentNumber_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newEnrollmentServiceForTest(mock)

	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "person_id", "application_id", "student_number", "enrollment_date"}).
			AddRow(int64(3), int64(5), (*int64)(nil), "", time.Now()))
	mock.ExpectExec(`UPDATE students SET student_number`).
		WithArgs("S2026-001", int64(3)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: repositories.StudentNumberUniqueConstraint})

	_, err = svc.AssignStudentNumber(context.Background(), 3, "S2026-001")
	assert.True(t, errors.Is(err, apperrors.ErrStudentNumberAlreadyExists))

	assert.NoError(t, mock.ExpectationsWereMet())
}
