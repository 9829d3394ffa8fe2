package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/db"
)

// PersonRepository handles database operations for applicant personal data
// and its owned children (family background, siblings).
type PersonRepository struct {
	db db.Pool
}

// NewPersonRepository creates a new person repository
func NewPersonRepository(pool db.Pool) *PersonRepository {
	return &PersonRepository{
		db: pool,
	}
}

const personColumns = `
	id, email, first_name, middle_name, last_name, suffix, lrn, birth_date,
	gender, contact_number, current_address, permanent_address,
	health_conditions, has_siblings, created_at, updated_at`

func scanPerson(row pgx.Row) (*models.Person, error) {
	var p models.Person
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FirstName,
		&p.MiddleName,
		&p.LastName,
		&p.Suffix,
		&p.LRN,
		&p.BirthDate,
		&p.Gender,
		&p.ContactNumber,
		&p.CurrentAddress,
		&p.PermanentAddress,
		&p.HealthConditions,
		&p.HasSiblings,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail retrieves a person by email inside the given querier scope.
// Returns (nil, nil) when no person exists for the email.
func (r *PersonRepository) GetByEmail(ctx context.Context, q db.Querier, email string) (*models.Person, error) {
	query := `SELECT` + personColumns + ` FROM people WHERE email = $1`

	person, err := scanPerson(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving person by email: %w", err)
	}

	return person, nil
}

// GetByID retrieves a person by ID. Returns (nil, nil) when absent.
func (r *PersonRepository) GetByID(ctx context.Context, id int64) (*models.Person, error) {
	query := `SELECT` + personColumns + ` FROM people WHERE id = $1`

	person, err := scanPerson(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving person: %w", err)
	}

	return person, nil
}

// Insert creates a new person row and fills in the generated ID.
func (r *PersonRepository) Insert(ctx context.Context, q db.Querier, p *models.Person) error {
	query := `
		INSERT INTO people (
			email, first_name, middle_name, last_name, suffix, lrn, birth_date,
			gender, contact_number, current_address, permanent_address,
			health_conditions, has_siblings
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		p.Email, p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.LRN, p.BirthDate,
		p.Gender, p.ContactNumber, p.CurrentAddress, p.PermanentAddress,
		p.HealthConditions, p.HasSiblings,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("error inserting person: %w", err)
	}

	return nil
}

// Update replaces all supplied fields of an existing person in place.
func (r *PersonRepository) Update(ctx context.Context, q db.Querier, p *models.Person) error {
	query := `
		UPDATE people
		SET email = $1, first_name = $2, middle_name = $3, last_name = $4,
			suffix = $5, lrn = $6, birth_date = $7, gender = $8,
			contact_number = $9, current_address = $10, permanent_address = $11,
			health_conditions = $12, has_siblings = $13, updated_at = NOW()
		WHERE id = $14
	`

	cmdTag, err := q.Exec(ctx, query,
		p.Email, p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.LRN, p.BirthDate,
		p.Gender, p.ContactNumber, p.CurrentAddress, p.PermanentAddress,
		p.HealthConditions, p.HasSiblings, p.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating person: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return errors.New("person not found")
	}

	return nil
}

// UpsertFamilyBackground writes the single family background row for a
// person, replacing it wholesale when one already exists.
func (r *PersonRepository) UpsertFamilyBackground(ctx context.Context, q db.Querier, fb *models.FamilyBackground) error {
	query := `
		INSERT INTO family_backgrounds (
			person_id, father_name, father_occupation, father_contact,
			mother_name, mother_occupation, mother_contact,
			guardian_name, guardian_relation, guardian_contact,
			emergency_name, emergency_contact, emergency_relation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (person_id) DO UPDATE SET
			father_name = EXCLUDED.father_name,
			father_occupation = EXCLUDED.father_occupation,
			father_contact = EXCLUDED.father_contact,
			mother_name = EXCLUDED.mother_name,
			mother_occupation = EXCLUDED.mother_occupation,
			mother_contact = EXCLUDED.mother_contact,
			guardian_name = EXCLUDED.guardian_name,
			guardian_relation = EXCLUDED.guardian_relation,
			guardian_contact = EXCLUDED.guardian_contact,
			emergency_name = EXCLUDED.emergency_name,
			emergency_contact = EXCLUDED.emergency_contact,
			emergency_relation = EXCLUDED.emergency_relation
		RETURNING id
	`

	err := q.QueryRow(ctx, query,
		fb.PersonID, fb.FatherName, fb.FatherOccupation, fb.FatherContact,
		fb.MotherName, fb.MotherOccupation, fb.MotherContact,
		fb.GuardianName, fb.GuardianRelation, fb.GuardianContact,
		fb.EmergencyName, fb.EmergencyContact, fb.EmergencyRelation,
	).Scan(&fb.ID)
	if err != nil {
		return fmt.Errorf("error upserting family background: %w", err)
	}

	return nil
}

// GetFamilyBackground retrieves the family background for a person.
// Returns (nil, nil) when absent.
func (r *PersonRepository) GetFamilyBackground(ctx context.Context, personID int64) (*models.FamilyBackground, error) {
	query := `
		SELECT id, person_id, father_name, father_occupation, father_contact,
			mother_name, mother_occupation, mother_contact,
			guardian_name, guardian_relation, guardian_contact,
			emergency_name, emergency_contact, emergency_relation
		FROM family_backgrounds
		WHERE person_id = $1
	`

	var fb models.FamilyBackground
	err := r.db.QueryRow(ctx, query, personID).Scan(
		&fb.ID, &fb.PersonID, &fb.FatherName, &fb.FatherOccupation, &fb.FatherContact,
		&fb.MotherName, &fb.MotherOccupation, &fb.MotherContact,
		&fb.GuardianName, &fb.GuardianRelation, &fb.GuardianContact,
		&fb.EmergencyName, &fb.EmergencyContact, &fb.EmergencyRelation,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving family background: %w", err)
	}

	return &fb, nil
}

// ReplaceSiblings deletes all existing sibling rows for the person and
// inserts the incoming list. No diffing; no history.
func (r *PersonRepository) ReplaceSiblings(ctx context.Context, q db.Querier, personID int64, siblings []models.Sibling) error {
	if _, err := q.Exec(ctx, `DELETE FROM siblings WHERE person_id = $1`, personID); err != nil {
		return fmt.Errorf("error clearing siblings: %w", err)
	}

	for i := range siblings {
		s := &siblings[i]
		err := q.QueryRow(ctx, `
			INSERT INTO siblings (person_id, full_name, grade_level, id_number)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			personID, s.FullName, s.GradeLevel, s.IDNumber,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("error inserting sibling: %w", err)
		}
		s.PersonID = personID
	}

	return nil
}

// GetSiblings retrieves all sibling rows for a person.
func (r *PersonRepository) GetSiblings(ctx context.Context, personID int64) ([]models.Sibling, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, person_id, full_name, grade_level, id_number
		FROM siblings
		WHERE person_id = $1
		ORDER BY id`, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var siblings []models.Sibling
	for rows.Next() {
		var s models.Sibling
		if err := rows.Scan(&s.ID, &s.PersonID, &s.FullName, &s.GradeLevel, &s.IDNumber); err != nil {
			return nil, err
		}
		siblings = append(siblings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return siblings, nil
}
