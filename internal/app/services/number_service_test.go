package services

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
)

func TestCategoryLetter(t *testing.T) {
	tests := []struct {
		yearLevel string
		want      string
	}{
		{"Grade 1", LetterElementary},
		{"Grade 6", LetterElementary},
		{"Grade 7", LetterSecondary},
		{"Grade 12", LetterSecondary},
		{"7", LetterSecondary},
		{"3", LetterElementary},
		{"Kindergarten", LetterElementary},
		{"Kinder", LetterElementary},
		{"KG", LetterElementary},
		{"K", LetterElementary},
		{"grade 11 - STEM", LetterSecondary},
		{"GRADE 10", LetterSecondary},
		{"Nursery", LetterElementary},
		{"", LetterElementary},
		// A digit in the text wins over keyword matching
		{"Kinder 2", LetterElementary},
		{"Junior High 8", LetterSecondary},
	}

	for _, tt := range tests {
		t.Run(tt.yearLevel, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryLetter(tt.yearLevel))
		})
	}
}

func TestStudentCategoryFor(t *testing.T) {
	les := models.CategoryLES
	jhs := models.CategoryJHS
	shs := models.CategorySHS

	tests := []struct {
		yearLevel string
		want      *models.StudentCategory
	}{
		{"Kindergarten", &les},
		{"K", &les},
		{"Grade 1", &les},
		{"Grade 6", &les},
		{"Grade 7", &jhs},
		{"Grade 10", &jhs},
		{"Grade 11", &shs},
		{"Grade 12", &shs},
		{"Grade 13", nil},
		{"unrecognized", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.yearLevel, func(t *testing.T) {
			got := StudentCategoryFor(tt.yearLevel)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "E0001", FormatNumber("E", 1))
	assert.Equal(t, "H0042", FormatNumber("H", 42))
	assert.Equal(t, "E9999", FormatNumber("E", 9999))
	// Padding stops once the sequence outgrows four digits
	assert.Equal(t, "E10000", FormatNumber("E", 10000))
	assert.Equal(t, "H123456", FormatNumber("H", 123456))
}

func TestNumberService_Next(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewNumberService(repositories.NewApplicationRepository(mock))

	mock.ExpectQuery(`SELECT COALESCE\(MAX`).
		WithArgs("H").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(41))

	number, err := svc.Next(context.Background(), mock, "Grade 8")
	require.NoError(t, err)
	assert.Equal(t, "H0042", number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberService_Resolve_GeneratesWhenNoOverride(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewNumberService(repositories.NewApplicationRepository(mock))

	mock.ExpectQuery(`SELECT COALESCE\(MAX`).
		WithArgs("E").
		WillReturnRows(pgxmock.NewRows([]string{"max"}).AddRow(0))

	number, err := svc.Resolve(context.Background(), mock, "Kindergarten", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "E0001", number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberService_Resolve_ManualOverride(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewNumberService(repositories.NewApplicationRepository(mock))

	// Uppercased before the uniqueness check
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("E0777", int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	number, err := svc.Resolve(context.Background(), mock, "Grade 2", " e0777 ", 0)
	require.NoError(t, err)
	assert.Equal(t, "E0777", number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNumberService_Resolve_ManualOverrideTaken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := NewNumberService(repositories.NewApplicationRepository(mock))

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("E0042", int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = svc.Resolve(context.Background(), mock, "Grade 2", "E0042", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateNumber))
	assert.Contains(t, err.Error(), "E0042")

	assert.NoError(t, mock.ExpectationsWereMet())
}
