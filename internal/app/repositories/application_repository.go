package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/db"
)

// NumberUniqueConstraint is the unique constraint backing application_number.
// The intake retry loop keys on violations of this constraint.
const NumberUniqueConstraint = "applications_application_number_key"

// ApplicationRepository handles database operations for admission attempts
// and their owned children (educational backgrounds, documents).
type ApplicationRepository struct {
	db db.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(pool db.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: pool,
	}
}

const applicationColumns = `
	id, person_id, application_number, status, school_year, year_level,
	category, application_type, strand, classification, learning_mode,
	created_at, updated_at`

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID,
		&a.PersonID,
		&a.ApplicationNumber,
		&a.Status,
		&a.SchoolYear,
		&a.YearLevel,
		&a.Category,
		&a.ApplicationType,
		&a.Strand,
		&a.Classification,
		&a.LearningMode,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// MaxNumericSuffix returns the largest numeric suffix among application
// numbers carrying the given category letter, or 0 when none exist.
func (r *ApplicationRepository) MaxNumericSuffix(ctx context.Context, q db.Querier, letter string) (int, error) {
	query := `
		SELECT COALESCE(MAX(CAST(SUBSTRING(application_number FROM 2) AS INTEGER)), 0)
		FROM applications
		WHERE application_number LIKE $1 || '%'
		  AND SUBSTRING(application_number FROM 2) ~ '^[0-9]+$'
	`

	var max int
	if err := q.QueryRow(ctx, query, letter).Scan(&max); err != nil {
		return 0, fmt.Errorf("error finding max application number: %w", err)
	}

	return max, nil
}

// NumberExists checks whether an application number is already taken,
// excluding the given application ID (0 means exclude nothing).
func (r *ApplicationRepository) NumberExists(ctx context.Context, q db.Querier, number string, excludeID int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM applications WHERE application_number = $1 AND id != $2)`,
		number, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking application number: %w", err)
	}

	return exists, nil
}

// Insert creates a new application row and fills in the generated ID.
func (r *ApplicationRepository) Insert(ctx context.Context, q db.Querier, a *models.Application) error {
	query := `
		INSERT INTO applications (
			person_id, application_number, status, school_year, year_level,
			category, application_type, strand, classification, learning_mode
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		a.PersonID, a.ApplicationNumber, a.Status, a.SchoolYear, a.YearLevel,
		a.Category, a.ApplicationType, a.Strand, a.Classification, a.LearningMode,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("error inserting application: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of an existing application.
func (r *ApplicationRepository) Update(ctx context.Context, q db.Querier, a *models.Application) error {
	query := `
		UPDATE applications
		SET application_number = $1, status = $2, school_year = $3,
			year_level = $4, category = $5, application_type = $6,
			strand = $7, classification = $8, learning_mode = $9,
			updated_at = NOW()
		WHERE id = $10
	`

	cmdTag, err := q.Exec(ctx, query,
		a.ApplicationNumber, a.Status, a.SchoolYear, a.YearLevel, a.Category,
		a.ApplicationType, a.Strand, a.Classification, a.LearningMode, a.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating application: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return errors.New("application not found")
	}

	return nil
}

// GetByID retrieves an application by ID inside the given querier scope.
// Returns (nil, nil) when absent.
func (r *ApplicationRepository) GetByID(ctx context.Context, q db.Querier, id int64) (*models.Application, error) {
	query := `SELECT` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}

	return app, nil
}

// List retrieves applications matching the filter plus the total row count.
// Empty filter fields are ignored.
func (r *ApplicationRepository) List(ctx context.Context, status, category, schoolYear string, offset uint64, limit int) ([]*models.Application, int64, error) {
	where := `
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR school_year = $3)
	`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications`+where,
		status, category, schoolYear).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT`+applicationColumns+` FROM applications`+where+`
		ORDER BY created_at DESC
		OFFSET $4 LIMIT $5`,
		status, category, schoolYear, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// Delete removes an application; educational backgrounds and documents go
// with it via cascade, students keep a set-null back-reference.
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting application: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return errors.New("application not found")
	}

	return nil
}

// ReplaceEducationalBackgrounds deletes all existing prior-school rows for
// the application and inserts the incoming list.
func (r *ApplicationRepository) ReplaceEducationalBackgrounds(ctx context.Context, q db.Querier, applicationID int64, entries []models.EducationalBackground) error {
	if _, err := q.Exec(ctx, `DELETE FROM educational_backgrounds WHERE application_id = $1`, applicationID); err != nil {
		return fmt.Errorf("error clearing educational backgrounds: %w", err)
	}

	for i := range entries {
		e := &entries[i]
		err := q.QueryRow(ctx, `
			INSERT INTO educational_backgrounds (application_id, school, grade_from, grade_to, average, honors)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			applicationID, e.School, e.GradeFrom, e.GradeTo, e.Average, e.Honors,
		).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("error inserting educational background: %w", err)
		}
		e.ApplicationID = applicationID
	}

	return nil
}

// GetEducationalBackgrounds retrieves the prior-school rows for an application.
func (r *ApplicationRepository) GetEducationalBackgrounds(ctx context.Context, applicationID int64) ([]models.EducationalBackground, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, application_id, school, grade_from, grade_to, average, honors
		FROM educational_backgrounds
		WHERE application_id = $1
		ORDER BY id`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.EducationalBackground
	for rows.Next() {
		var e models.EducationalBackground
		if err := rows.Scan(&e.ID, &e.ApplicationID, &e.School, &e.GradeFrom, &e.GradeTo, &e.Average, &e.Honors); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// MergeDocuments creates or merges the documents row for an application.
// Only non-nil slots overwrite; previously stored paths for slots not
// resubmitted are never nulled out.
func (r *ApplicationRepository) MergeDocuments(ctx context.Context, q db.Querier, d *models.Documents) error {
	query := `
		INSERT INTO documents (
			application_id, certificate_of_enrollment, birth_certificate,
			report_card_front, report_card_back
		)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id) DO UPDATE SET
			certificate_of_enrollment = COALESCE(EXCLUDED.certificate_of_enrollment, documents.certificate_of_enrollment),
			birth_certificate = COALESCE(EXCLUDED.birth_certificate, documents.birth_certificate),
			report_card_front = COALESCE(EXCLUDED.report_card_front, documents.report_card_front),
			report_card_back = COALESCE(EXCLUDED.report_card_back, documents.report_card_back)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		d.ApplicationID, d.CertificateOfEnrollment, d.BirthCertificate,
		d.ReportCardFront, d.ReportCardBack,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("error merging documents: %w", err)
	}

	return nil
}

// GetDocuments retrieves the documents row for an application.
// Returns (nil, nil) when none exists.
func (r *ApplicationRepository) GetDocuments(ctx context.Context, applicationID int64) (*models.Documents, error) {
	query := `
		SELECT id, application_id, certificate_of_enrollment, birth_certificate,
			report_card_front, report_card_back
		FROM documents
		WHERE application_id = $1
	`

	var d models.Documents
	err := r.db.QueryRow(ctx, query, applicationID).Scan(
		&d.ID, &d.ApplicationID, &d.CertificateOfEnrollment, &d.BirthCertificate,
		&d.ReportCardFront, &d.ReportCardBack,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving documents: %w", err)
	}

	return &d, nil
}
