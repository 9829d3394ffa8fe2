package services

import (
	"context"
	"time"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/db"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/dberrors"
	"github.com/dcruz/schoolgate/internal/pkg/email"
	"github.com/dcruz/schoolgate/internal/pkg/logger"
)

// EnrollmentService reconciles student records when an application reaches
// the Enrolled status, and manages students afterwards.
type EnrollmentService struct {
	pool         db.Pool
	studentRepo  *repositories.StudentRepository
	personRepo   *repositories.PersonRepository
	emailService email.EmailService
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	pool db.Pool,
	studentRepo *repositories.StudentRepository,
	personRepo *repositories.PersonRepository,
	emailService email.EmailService,
) *EnrollmentService {
	return &EnrollmentService{
		pool:         pool,
		studentRepo:  studentRepo,
		personRepo:   personRepo,
		emailService: emailService,
	}
}

// Promote ensures exactly one student exists for the enrolled application's
// person. Idempotent: a student already linked to this application or person
// is reused with its enrollment date untouched. Runs inside the caller's
// querier scope so a failed amend rolls the promotion back too.
func (s *EnrollmentService) Promote(ctx context.Context, q db.Querier, app *models.Application) (*models.Student, error) {
	student, err := s.studentRepo.FindByApplicationOrPerson(ctx, q, app.ID, app.PersonID)
	if err != nil {
		return nil, err
	}

	if student != nil {
		student.PersonID = app.PersonID
		if student.ApplicationID == nil {
			appID := app.ID
			student.ApplicationID = &appID
		}
		if err := s.studentRepo.UpdateLinks(ctx, q, student); err != nil {
			return nil, err
		}
		return student, nil
	}

	appID := app.ID
	student = &models.Student{
		PersonID:       app.PersonID,
		ApplicationID:  &appID,
		EnrollmentDate: time.Now(),
	}

	if err := s.studentRepo.Insert(ctx, q, student); err != nil {
		// The person-uniqueness constraint backstops the lookup above under
		// concurrent promotions.
		if dberrors.IsDuplicateConstraintError(err, repositories.StudentPersonUniqueConstraint) {
			return s.studentRepo.FindByApplicationOrPerson(ctx, q, app.ID, app.PersonID)
		}
		return nil, err
	}

	logger.Info().
		Int64("studentId", student.ID).
		Int64("personId", student.PersonID).
		Int64("applicationId", app.ID).
		Msg("Student record created")

	return student, nil
}

// GetStudent retrieves a student by ID.
func (s *EnrollmentService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

// ListStudents retrieves a page of students plus the total count.
func (s *EnrollmentService) ListStudents(ctx context.Context, page, size int) ([]*models.Student, int64, error) {
	return s.studentRepo.List(ctx, uint64(page*size), size)
}

// AssignStudentNumber sets a student's permanent ID number and notifies the
// applicant by email. The email is best effort; a send failure does not undo
// the assignment.
func (s *EnrollmentService) AssignStudentNumber(ctx context.Context, studentID int64, number string) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, apperrors.ErrStudentNotFound
	}

	if err := s.studentRepo.UpdateStudentNumber(ctx, studentID, number); err != nil {
		if dberrors.IsDuplicateConstraintError(err, repositories.StudentNumberUniqueConstraint) {
			return nil, apperrors.ErrStudentNumberAlreadyExists
		}
		return nil, err
	}
	student.StudentNumber = number

	person, err := s.personRepo.GetByID(ctx, student.PersonID)
	if err != nil || person == nil {
		logger.Warn().Int64("studentId", studentID).Msg("Could not load person for student number notification")
		return student, nil
	}

	if err := s.emailService.SendStudentNumberEmail(person.Email, person.FirstName+" "+person.LastName, number); err != nil {
		logger.Warn().Err(err).Str("email", person.Email).Msg("Failed to send student number email")
	}

	return student, nil
}
