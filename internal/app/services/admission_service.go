package services

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/models/dto"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/db"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
	"github.com/dcruz/schoolgate/internal/pkg/dberrors"
	"github.com/dcruz/schoolgate/internal/pkg/email"
	"github.com/dcruz/schoolgate/internal/pkg/filestorage"
	"github.com/dcruz/schoolgate/internal/pkg/logger"
)

// maxNumberRetries bounds how many times a submission is replayed when two
// concurrent writers generate the same application number. Each retry
// restarts the whole transaction, since Postgres aborts a transaction on the
// constraint violation.
const maxNumberRetries = 3

var nonAlphanumRegex = regexp.MustCompile(`[^A-Za-z0-9]`)

// SanitizeNamePart strips a name down to uppercase letters and digits for use
// in stored document filenames.
func SanitizeNamePart(name string) string {
	return strings.ToUpper(nonAlphanumRegex.ReplaceAllString(name, ""))
}

// FormatHealthConditions normalizes the free-text health-condition list to
// its stored form: empty entries dropped, "None" when nothing remains.
func FormatHealthConditions(conditions []string) string {
	var kept []string
	for _, c := range conditions {
		if v := strings.TrimSpace(c); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return "None"
	}
	return strings.Join(kept, ", ")
}

// DocumentUploads carries the four named file slots of a submission. Nil
// slots were not provided in this call and leave stored paths untouched.
type DocumentUploads struct {
	CertificateOfEnrollment *multipart.FileHeader
	BirthCertificate        *multipart.FileHeader
	ReportCardFront         *multipart.FileHeader
	ReportCardBack          *multipart.FileHeader
}

func (d DocumentUploads) empty() bool {
	return d.CertificateOfEnrollment == nil && d.BirthCertificate == nil &&
		d.ReportCardFront == nil && d.ReportCardBack == nil
}

// AdmissionService performs the multi-entity applicant write: person, family
// background, siblings, application, educational history and documents, all
// inside one transaction.
type AdmissionService struct {
	pool              db.Pool
	personRepo        *repositories.PersonRepository
	applicationRepo   *repositories.ApplicationRepository
	numberService     *NumberService
	enrollmentService *EnrollmentService
	storage           filestorage.FileStorage
	emailService      email.EmailService
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(
	pool db.Pool,
	personRepo *repositories.PersonRepository,
	applicationRepo *repositories.ApplicationRepository,
	numberService *NumberService,
	enrollmentService *EnrollmentService,
	storage filestorage.FileStorage,
	emailService email.EmailService,
) *AdmissionService {
	return &AdmissionService{
		pool:              pool,
		personRepo:        personRepo,
		applicationRepo:   applicationRepo,
		numberService:     numberService,
		enrollmentService: enrollmentService,
		storage:           storage,
		emailService:      emailService,
	}
}

// Submit persists a new enrollment application and everything it owns as one
// atomic unit. On a generated-number collision with a concurrent submission
// the whole transaction is retried with a freshly generated number.
func (s *AdmissionService) Submit(ctx context.Context, req *dto.ApplicationRequest, files DocumentUploads) (*models.Application, error) {
	app, err := s.writeWithRetry(ctx, 0, req, files)
	if err != nil {
		return nil, err
	}

	// Acknowledgement is best effort and never fails the submission
	toEmail := strings.ToLower(strings.TrimSpace(req.Email))
	toName := strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName)
	if err := s.emailService.SendApplicationReceivedEmail(toEmail, toName, app.ApplicationNumber); err != nil {
		logger.Warn().Err(err).Str("email", toEmail).Msg("Failed to send application received email")
	}

	return app, nil
}

// Amend rewrites an existing application and its owned records from a full
// payload, following the same steps as Submit. A status change to Enrolled
// promotes the applicant to a student within the same transaction.
func (s *AdmissionService) Amend(ctx context.Context, applicationID int64, req *dto.ApplicationRequest, files DocumentUploads) (*models.Application, error) {
	return s.writeWithRetry(ctx, applicationID, req, files)
}

func (s *AdmissionService) writeWithRetry(ctx context.Context, applicationID int64, req *dto.ApplicationRequest, files DocumentUploads) (*models.Application, error) {
	manualNumber := strings.TrimSpace(req.ApplicationNumber) != ""

	var app *models.Application
	for attempt := 0; ; attempt++ {
		app = nil
		err := db.WithTransaction(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
			var txErr error
			app, txErr = s.persist(ctx, tx, applicationID, req, files)
			return txErr
		})
		if err == nil {
			return app, nil
		}

		if dberrors.IsDuplicateConstraintError(err, repositories.NumberUniqueConstraint) {
			if !manualNumber && attempt < maxNumberRetries {
				logger.Warn().
					Int("attempt", attempt+1).
					Str("yearLevel", req.YearLevel).
					Msg("Application number collision, retrying submission")
				continue
			}
			number := strings.ToUpper(strings.TrimSpace(req.ApplicationNumber))
			if number == "" && app != nil {
				number = app.ApplicationNumber
			}
			return nil, apperrors.NewDuplicateNumberError(number)
		}

		return nil, err
	}
}

// persist runs the ordered write steps inside one open transaction.
// applicationID 0 means a fresh submission.
func (s *AdmissionService) persist(ctx context.Context, tx pgx.Tx, applicationID int64, req *dto.ApplicationRequest, files DocumentUploads) (*models.Application, error) {
	var existing *models.Application
	if applicationID != 0 {
		var err error
		existing, err = s.applicationRepo.GetByID(ctx, tx, applicationID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperrors.ErrApplicationNotFound
		}
	}

	person, err := s.upsertPerson(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := s.personRepo.UpsertFamilyBackground(ctx, tx, familyFromRequest(person.ID, req)); err != nil {
		return nil, err
	}

	siblings, err := siblingsFromRequest(person.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.personRepo.ReplaceSiblings(ctx, tx, person.ID, siblings); err != nil {
		return nil, err
	}

	app, err := s.writeApplication(ctx, tx, existing, person.ID, req)
	if err != nil {
		return app, err
	}

	schools, err := schoolsFromRequest(app.ID, req)
	if err != nil {
		return nil, err
	}
	if err := s.applicationRepo.ReplaceEducationalBackgrounds(ctx, tx, app.ID, schools); err != nil {
		return nil, err
	}

	if err := s.storeDocuments(ctx, tx, app, person, files); err != nil {
		return nil, err
	}

	if existing != nil && app.Status == models.StatusEnrolled {
		if _, err := s.enrollmentService.Promote(ctx, tx, app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// upsertPerson finds the person by email and updates all supplied fields in
// place, or creates the person on first submission.
func (s *AdmissionService) upsertPerson(ctx context.Context, tx pgx.Tx, req *dto.ApplicationRequest) (*models.Person, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	person, err := s.personRepo.GetByEmail(ctx, tx, email)
	if err != nil {
		return nil, err
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	updated := &models.Person{
		Email:            email,
		FirstName:        strings.TrimSpace(req.FirstName),
		MiddleName:       strings.TrimSpace(req.MiddleName),
		LastName:         strings.TrimSpace(req.LastName),
		Suffix:           strings.TrimSpace(req.Suffix),
		LRN:              strings.TrimSpace(req.LRN),
		BirthDate:        birthDate,
		Gender:           strings.TrimSpace(req.Gender),
		ContactNumber:    strings.TrimSpace(req.ContactNumber),
		CurrentAddress:   strings.TrimSpace(req.CurrentAddress),
		PermanentAddress: strings.TrimSpace(req.PermanentAddress),
		HealthConditions: FormatHealthConditions(req.HealthConditions),
		HasSiblings:      req.HasSiblings,
	}

	if person == nil {
		if err := s.personRepo.Insert(ctx, tx, updated); err != nil {
			return nil, err
		}
		return updated, nil
	}

	updated.ID = person.ID
	updated.CreatedAt = person.CreatedAt
	if err := s.personRepo.Update(ctx, tx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// writeApplication resolves the application number and inserts or updates the
// application row. On update the stored number is kept unless the payload
// carries a different one, which must pass the uniqueness check. When the
// insert itself fails, the returned application still carries the attempted
// number so the caller can report it.
func (s *AdmissionService) writeApplication(ctx context.Context, tx pgx.Tx, existing *models.Application, personID int64, req *dto.ApplicationRequest) (*models.Application, error) {
	status := models.NormalizeStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = models.StatusPending
	}
	if !models.ValidStatus(status) {
		return nil, apperrors.NewBadRequestError("invalid application status: " + req.Status)
	}

	appType := models.ApplicationType(strings.TrimSpace(req.ApplicationType))
	if appType == "" {
		appType = models.TypeOnline
	}

	app := &models.Application{
		PersonID:        personID,
		Status:          status,
		SchoolYear:      strings.TrimSpace(req.SchoolYear),
		YearLevel:       strings.TrimSpace(req.YearLevel),
		Category:        StudentCategoryFor(req.YearLevel),
		ApplicationType: appType,
		Strand:          strings.TrimSpace(req.Strand),
		Classification:  strings.TrimSpace(req.Classification),
		LearningMode:    strings.TrimSpace(req.LearningMode),
	}

	if existing == nil {
		number, err := s.numberService.Resolve(ctx, tx, req.YearLevel, req.ApplicationNumber, 0)
		if err != nil {
			return nil, err
		}
		app.ApplicationNumber = number

		if err := s.applicationRepo.Insert(ctx, tx, app); err != nil {
			return app, err
		}
		return app, nil
	}

	app.ID = existing.ID
	app.ApplicationNumber = existing.ApplicationNumber
	app.CreatedAt = existing.CreatedAt

	override := strings.ToUpper(strings.TrimSpace(req.ApplicationNumber))
	if override != "" && override != existing.ApplicationNumber {
		number, err := s.numberService.Resolve(ctx, tx, req.YearLevel, override, existing.ID)
		if err != nil {
			return nil, err
		}
		app.ApplicationNumber = number
	}

	if err := s.applicationRepo.Update(ctx, tx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// storeDocuments writes each uploaded file under its deterministic name and
// merges the resulting paths into the documents row. Slots without a new
// upload keep their previously stored paths.
func (s *AdmissionService) storeDocuments(ctx context.Context, tx pgx.Tx, app *models.Application, person *models.Person, files DocumentUploads) error {
	if files.empty() {
		return nil
	}

	docs := &models.Documents{ApplicationID: app.ID}

	slots := []struct {
		file *multipart.FileHeader
		tag  string
		dest **string
	}{
		{files.CertificateOfEnrollment, dto.SlotCertificateOfEnrollment, &docs.CertificateOfEnrollment},
		{files.BirthCertificate, dto.SlotBirthCertificate, &docs.BirthCertificate},
		{files.ReportCardFront, dto.SlotReportCardFront, &docs.ReportCardFront},
		{files.ReportCardBack, dto.SlotReportCardBack, &docs.ReportCardBack},
	}

	for _, slot := range slots {
		if slot.file == nil {
			continue
		}

		filename := documentFilename(app.ApplicationNumber, person.LastName, person.FirstName, slot.tag, slot.file.Filename)
		path, err := s.storage.SaveAs(slot.file, filename)
		if err != nil {
			return err
		}
		*slot.dest = &path
	}

	return s.applicationRepo.MergeDocuments(ctx, tx, docs)
}

func documentFilename(applicationNumber, lastName, firstName, tag, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return applicationNumber + "_" + SanitizeNamePart(lastName) + "_" + SanitizeNamePart(firstName) + "_" + tag + ext
}

// GetApplication retrieves an application with its person, prior schools and
// documents populated.
func (s *AdmissionService) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperrors.ErrApplicationNotFound
	}

	if app.Person, err = s.personRepo.GetByID(ctx, app.PersonID); err != nil {
		return nil, err
	}
	if app.Schools, err = s.applicationRepo.GetEducationalBackgrounds(ctx, app.ID); err != nil {
		return nil, err
	}
	if app.Documents, err = s.applicationRepo.GetDocuments(ctx, app.ID); err != nil {
		return nil, err
	}

	return app, nil
}

// ListApplications retrieves a filtered page of applications plus the total.
func (s *AdmissionService) ListApplications(ctx context.Context, filter dto.ApplicationFilter, page, size int) ([]*models.Application, int64, error) {
	status := string(models.NormalizeStatus(strings.TrimSpace(filter.Status)))
	return s.applicationRepo.List(ctx, status, strings.TrimSpace(filter.Category), strings.TrimSpace(filter.SchoolYear), uint64(page*size), size)
}

// DeleteApplication removes an application and everything it owns.
func (s *AdmissionService) DeleteApplication(ctx context.Context, id int64) error {
	app, err := s.applicationRepo.GetByID(ctx, s.pool, id)
	if err != nil {
		return err
	}
	if app == nil {
		return apperrors.ErrApplicationNotFound
	}

	return s.applicationRepo.Delete(ctx, id)
}

func parseBirthDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid birth date, expected YYYY-MM-DD: " + raw)
	}
	return &t, nil
}

func familyFromRequest(personID int64, req *dto.ApplicationRequest) *models.FamilyBackground {
	return &models.FamilyBackground{
		PersonID:          personID,
		FatherName:        strings.TrimSpace(req.FatherName),
		FatherOccupation:  strings.TrimSpace(req.FatherOccupation),
		FatherContact:     strings.TrimSpace(req.FatherContact),
		MotherName:        strings.TrimSpace(req.MotherName),
		MotherOccupation:  strings.TrimSpace(req.MotherOccupation),
		MotherContact:     strings.TrimSpace(req.MotherContact),
		GuardianName:      strings.TrimSpace(req.GuardianName),
		GuardianRelation:  strings.TrimSpace(req.GuardianRelation),
		GuardianContact:   strings.TrimSpace(req.GuardianContact),
		EmergencyName:     strings.TrimSpace(req.EmergencyName),
		EmergencyContact:  strings.TrimSpace(req.EmergencyContact),
		EmergencyRelation: strings.TrimSpace(req.EmergencyRelation),
	}
}

// siblingsFromRequest decodes the sibling list; entries without a full name
// are silently skipped.
func siblingsFromRequest(personID int64, req *dto.ApplicationRequest) ([]models.Sibling, error) {
	inputs, err := req.ParsedSiblings()
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	var siblings []models.Sibling
	for _, in := range inputs {
		name := strings.TrimSpace(in.FullName)
		if name == "" {
			continue
		}
		siblings = append(siblings, models.Sibling{
			PersonID:   personID,
			FullName:   name,
			GradeLevel: strings.TrimSpace(in.GradeLevel),
			IDNumber:   strings.TrimSpace(in.IDNumber),
		})
	}

	return siblings, nil
}

// schoolsFromRequest decodes the prior-school list; entries without a school
// name are silently skipped.
func schoolsFromRequest(applicationID int64, req *dto.ApplicationRequest) ([]models.EducationalBackground, error) {
	inputs, err := req.ParsedSchools()
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	var schools []models.EducationalBackground
	for _, in := range inputs {
		school := strings.TrimSpace(in.School)
		if school == "" {
			continue
		}
		schools = append(schools, models.EducationalBackground{
			ApplicationID: applicationID,
			School:        school,
			GradeFrom:     strings.TrimSpace(in.GradeFrom),
			GradeTo:       strings.TrimSpace(in.GradeTo),
			Average:       strings.TrimSpace(in.Average),
			Honors:        strings.TrimSpace(in.Honors),
		})
	}

	return schools, nil
}
