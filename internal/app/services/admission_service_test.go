package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/email"
	"github.com/dcruz/schoolgate/internal/pkg/filestorage"
)

func TestSanitizeNamePart(t *testing.T) {
	assert.Equal(t, "DELACRUZ", SanitizeNamePart("Dela Cruz"))
	assert.Equal(t, "OBRIENSMITH", SanitizeNamePart("O'Brien-Smith"))
	assert.Equal(t, "MARIA3", SanitizeNamePart("maria 3"))
	assert.Equal(t, "", SanitizeNamePart("  "))
}

func TestFormatHealthConditions(t *testing.T) {
	assert.Equal(t, "None", FormatHealthConditions(nil))
	assert.Equal(t, "None", FormatHealthConditions([]string{"", "  "}))
	assert.Equal(t, "Asthma", FormatHealthConditions([]string{"Asthma"}))
	assert.Equal(t, "Asthma, Allergy", FormatHealthConditions([]string{" Asthma ", "", "Allergy"}))
}

func TestDocumentFilename(t *testing.T) {
	got := documentFilename("E0001", "Dela Cruz", "Juan", dto.SlotBirthCertificate, "scan.JPG")
	assert.Equal(t, "E0001_DELACRUZ_JUAN_BC.jpg", got)

	got = documentFilename("H0042", "Santos", "Maria Clara", dto.SlotReportCardFront, "front.pdf")
	assert.Equal(t, "H0042_SANTOS_MARIACLARA_RCF.pdf", got)
}

func TestSiblingsFromRequest_SkipsNameless(t *testing.T) {
	req := &dto.ApplicationRequest{
		Siblings: `[{"fullName":"Ana Dela Cruz","gradeLevel":"Grade 4"},{"fullName":"  "},{"fullName":"Ben Dela Cruz"}]`,
	}

	siblings, err := siblingsFromRequest(5, req)
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, "Ana Dela Cruz", siblings[0].FullName)
	assert.Equal(t, "Ben Dela Cruz", siblings[1].FullName)
	assert.Equal(t, int64(5), siblings[0].PersonID)
}

func TestSchoolsFromRequest_SkipsSchoolless(t *testing.T) {
	req := &dto.ApplicationRequest{
		Schools: `[{"school":"","gradeFrom":"Grade 1"},{"school":"San Isidro Elementary","gradeFrom":"Grade 1","gradeTo":"Grade 6"}]`,
	}

	schools, err := schoolsFromRequest(9, req)
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, "San Isidro Elementary", schools[0].School)
	assert.Equal(t, int64(9), schools[0].ApplicationID)
}

func TestSiblingsFromRequest_InvalidPayload(t *testing.T) {
	req := &dto.ApplicationRequest{Siblings: `not json`}

	_, err := siblingsFromRequest(1, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

// stubStorage records saved filenames without touching the filesystem.
type stubStorage struct {
	saved []string
}

func (s *stubStorage) SaveAs(fileHeader *multipart.FileHeader, filename string) (string, error) {
	s.saved = append(s.saved, filename)
	return "uploads/" + filename, nil
}

func (s *stubStorage) DeleteFile(string) error { return nil }

func newAdmissionServiceForTest(mock pgxmock.PgxPoolIface, storage filestorage.FileStorage) *AdmissionService {
	personRepo := repositories.NewPersonRepository(mock)
	applicationRepo := repositories.NewApplicationRepository(mock)
	studentRepo := repositories.NewStudentRepository(mock)
	emailSvc := email.NewEmailService(email.SMTPConfig{}, zerolog.Nop())

	return NewAdmissionService(
		mock,
		personRepo,
		applicationRepo,
		NewNumberService(applicationRepo),
		NewEnrollmentService(mock, studentRepo, personRepo, emailSvc),
		storage,
		emailSvc,
	)
}

func minimalRequest() *dto.ApplicationRequest {
	return &dto.ApplicationRequest{
		Email:      "Juan.DelaCruz@Example.com",
		FirstName:  "Juan",
		LastName:   "Dela Cruz",
		SchoolYear: "2026-2027",
		YearLevel:  "Grade 8",
	}
}

// anyArgs builds a placeholder argument list for wide statements whose
// individual values are asserted elsewhere.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// applicationArgs matches the application insert, pinning only the number.
func applicationArgs(number string) []interface{} {
	args := anyArgs(10)
	args[1] = number
	return args
}

func personRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "first_name", "middle_name", "last_name", "suffix", "lrn",
		"birth_date", "gender", "contact_number", "current_address",
		"permanent_address", "health_conditions", "has_siblings", "created_at", "updated_at",
	}).AddRow(
		int64(5), "juan.delacruz@example.com", "Juan", "", "Dela Cruz", "", "",
		(*time.Time)(nil), "", "", "", "", "None", false, time.Now(), time.Now(),
	)
}

func applicationRows(number string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "person_id", "application_number", "status", "school_year", "year_level",
		"category", "application_type", "strand", "classification", "learning_mode",
		"created_at", "updated_at",
	}).AddRow(
		int64(9), int64(5), number, models.StatusPending, "2026-2027", "Grade 8",
		(*models.StudentCategory)(nil), models.TypeOnline, "", "", "",
		time.Now(), time.Now(),
	)
}

// expectPersistSteps queues the write sequence for a fresh minimal submission
// up to and including number generation.
func expectPersistSteps(mock pgxmock.PgxPoolIface, maxSuffix int) {
	mock.ExpectQuery(`FROM people WHERE email`).
		WithArgs("juan.delacruz@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO people`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO family_backgrounds`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM siblings`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX`).
		WithArgs("H").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(maxSuffix))
}

// expectAmendPersonSteps queues the person steps of an amend, where the
// person already exists and is updated in place.
func expectAmendPersonSteps(mock pgxmock.PgxPoolIface) {
	mock.ExpectQuery(`FROM people WHERE email`).
		WithArgs("juan.delacruz@example.com").
		WillReturnRows(personRows())
	mock.ExpectExec(`UPDATE people`).
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(`INSERT INTO family_backgrounds`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM siblings`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
}

func TestAdmissionService_Submit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newAdmissionServiceForTest(mock, nil)

	mock.ExpectBegin()
	expectPersistSteps(mock, 41)
	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(applicationArgs("H0042")...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(`DELETE FROM educational_backgrounds`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	app, err := svc.Submit(context.Background(), minimalRequest(), DocumentUploads{})
	require.NoError(t, err)
	assert.Equal(t, int64(9), app.ID)
	assert.Equal(t, "H0042", app.ApplicationNumber)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, models.TypeOnline, app.ApplicationType)
	require.NotNil(t, app.Category)
	assert.Equal(t, models.CategoryJHS, *app.Category)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionService_Submit_RetriesOnNumberCollision(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newAdmissionServiceForTest(mock, nil)

	collision := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: repositories.NumberUniqueConstraint,
	}

	// First attempt loses the race on the generated number and rolls back
	mock.ExpectBegin()
	expectPersistSteps(mock, 41)
	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(applicationArgs("H0042")...).
		WillReturnError(collision)
	mock.ExpectRollback()

	// Second attempt regenerates and succeeds
	mock.ExpectBegin()
	expectPersistSteps(mock, 42)
	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(applicationArgs("H0043")...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(`DELETE FROM educational_backgrounds`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	app, err := svc.Submit(context.Background(), minimalRequest(), DocumentUploads{})
	require.NoError(t, err)
	assert.Equal(t, "H0043", app.ApplicationNumber)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionService_Submit_ExhaustedRetriesNameLastNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newAdmissionServiceForTest(mock, nil)

	collision := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: repositories.NumberUniqueConstraint,
	}

	// Initial attempt plus three retries, every one losing the race
	for i := 0; i <= maxNumberRetries; i++ {
		mock.ExpectBegin()
		expectPersistSteps(mock, 41+i)
		mock.ExpectQuery(`INSERT INTO applications`).
			WithArgs(applicationArgs(FormatNumber("H", 42+i))...).
			WillReturnError(collision)
		mock.ExpectRollback()
	}

	_, err = svc.Submit(context.Background(), minimalRequest(), DocumentUploads{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateNumber))
	assert.Contains(t, err.Error(), "H0045")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionService_Submit_ManualNumberTaken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newAdmissionServiceForTest(mock, nil)

	req := minimalRequest()
	req.ApplicationNumber = "h0042"

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM people WHERE email`).
		WithArgs("juan.delacruz@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO people`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO family_backgrounds`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM siblings`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("H0042", int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err = svc.Submit(context.Background(), req, DocumentUploads{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateNumber))
	assert.Contains(t, err.Error(), "H0042")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionService_Submit_InvalidStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newAdmissionServiceForTest(mock, nil)

	req := minimalRequest()
	req.Status = "Graduated"

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM people WHERE email`).
		WithArgs("juan.delacruz@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO people`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(`INSERT INTO family_backgrounds`).
		WithArgs(anyArgs(13)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec(`DELETE FROM siblings`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	_, err = svc.Submit(context.Background(), req, DocumentUploads{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionService_Amend_MergesOnlyProvidedDocumentSlots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	storage := &stubStorage{}
	svc := newAdmissionServiceForTest(mock, storage)

	files := DocumentUploads{
		BirthCertificate: &multipart.FileHeader{Filename: "scan.JPG"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM applications WHERE id`).
		WithArgs(int64(9)).
		WillReturnRows(applicationRows("E0001"))
	expectAmendPersonSteps(mock)
	updateArgs := anyArgs(10)
	updateArgs[0] = "E0001"
	updateArgs[9] = int64(9)
	mock.ExpectExec(`UPDATE applications`).
		WithArgs(updateArgs...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM educational_backgrounds`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	// Only the resubmitted slot carries a value; the others stay nil so
	// COALESCE keeps their stored paths
	path := "uploads/E0001_DELACRUZ_JUAN_BC.jpg"
	mock.ExpectQuery(`ON CONFLICT \(application_id\) DO UPDATE`).
		WithArgs(int64(9), (*string)(nil), &path, (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectCommit()

	app, err := svc.Amend(context.Background(), 9, minimalRequest(), files)
	require.NoError(t, err)
	assert.Equal(t, "E0001", app.ApplicationNumber)
	assert.Equal(t, []string{"E0001_DELACRUZ_JUAN_BC.jpg"}, storage.saved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionService_Amend_EnrolledStatusPromotesStudent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := newAdmissionServiceForTest(mock, nil)

	req := minimalRequest()
	req.Status = "Enrolled"

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM applications WHERE id`).
		WithArgs(int64(9)).
		WillReturnRows(applicationRows("E0001"))
	expectAmendPersonSteps(mock)
	mock.ExpectExec(`UPDATE applications`).
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM educational_backgrounds`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	// Promotion runs inside the same transaction
	mock.ExpectQuery(`FROM students`).
		WithArgs(int64(9), int64(5)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO students`).
		WithArgs(int64(5), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	app, err := svc.Amend(context.Background(), 9, req, DocumentUploads{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnrolled, app.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseBirthDate(t *testing.T) {
	got, err := parseBirthDate("2012-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2012, got.Year())

	got, err = parseBirthDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseBirthDate("15/03/2012")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}
