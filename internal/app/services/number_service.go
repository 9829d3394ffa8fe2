package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dcruz/schoolgate/internal/app/models"
	"github.com/dcruz/schoolgate/internal/app/repositories"
	"github.com/dcruz/schoolgate/internal/db"
	"github.com/dcruz/schoolgate/internal/pkg/apperrors"
)

// Category letters used as application number prefixes.
const (
	LetterElementary = "E"
	LetterSecondary  = "H"
)

var digitsRegex = regexp.MustCompile(`[0-9]+`)

var kinderKeywords = []string{"kindergarten", "kinder", "kg"}

// CategoryLetter derives the application number prefix from a year level
// string. A numeric grade in the text takes priority over keyword matching;
// anything unrecognized falls back to the elementary letter.
func CategoryLetter(yearLevel string) string {
	text := strings.ToLower(strings.TrimSpace(yearLevel))

	if digits := digitsRegex.FindString(text); digits != "" {
		if n, err := strconv.Atoi(digits); err == nil {
			switch {
			case n <= 6:
				return LetterElementary
			case n <= 12:
				return LetterSecondary
			}
		}
	}

	for _, kw := range kinderKeywords {
		if strings.Contains(text, kw) {
			return LetterElementary
		}
	}
	for _, token := range strings.Fields(text) {
		if token == "k" {
			return LetterElementary
		}
	}

	for n := 7; n <= 12; n++ {
		if strings.Contains(text, "grade "+strconv.Itoa(n)) {
			return LetterSecondary
		}
	}

	if strings.Contains(text, "grade") {
		return LetterElementary
	}

	return LetterElementary
}

// StudentCategoryFor derives the school-level grouping from a year level
// string. Returns nil for unrecognized year levels; that is not an error.
func StudentCategoryFor(yearLevel string) *models.StudentCategory {
	text := strings.ToLower(strings.TrimSpace(yearLevel))

	if digits := digitsRegex.FindString(text); digits != "" {
		if n, err := strconv.Atoi(digits); err == nil {
			var cat models.StudentCategory
			switch {
			case n <= 6:
				cat = models.CategoryLES
			case n <= 10:
				cat = models.CategoryJHS
			case n <= 12:
				cat = models.CategorySHS
			default:
				return nil
			}
			return &cat
		}
	}

	for _, kw := range kinderKeywords {
		if strings.Contains(text, kw) {
			cat := models.CategoryLES
			return &cat
		}
	}
	for _, token := range strings.Fields(text) {
		if token == "k" {
			cat := models.CategoryLES
			return &cat
		}
	}

	return nil
}

// FormatNumber joins a category letter with a sequence value, zero-padding
// to four digits until the sequence outgrows them.
func FormatNumber(letter string, next int) string {
	if next < 10000 {
		return fmt.Sprintf("%s%04d", letter, next)
	}
	return fmt.Sprintf("%s%d", letter, next)
}

// NumberService produces application numbers. Generated numbers are only
// reserved at insert time, so callers run generation and the insert inside
// one transaction and retry the transaction on a number collision.
type NumberService struct {
	applicationRepo *repositories.ApplicationRepository
}

// NewNumberService creates a new number service
func NewNumberService(applicationRepo *repositories.ApplicationRepository) *NumberService {
	return &NumberService{
		applicationRepo: applicationRepo,
	}
}

// Next computes the next application number for the category derived from
// the year level, within the given querier scope.
func (s *NumberService) Next(ctx context.Context, q db.Querier, yearLevel string) (string, error) {
	letter := CategoryLetter(yearLevel)

	max, err := s.applicationRepo.MaxNumericSuffix(ctx, q, letter)
	if err != nil {
		return "", err
	}

	return FormatNumber(letter, max+1), nil
}

// Resolve returns the application number to use: the manual override when one
// is supplied (after a uniqueness check excluding the record being updated,
// 0 for new records), otherwise the next generated number for the year level.
func (s *NumberService) Resolve(ctx context.Context, q db.Querier, yearLevel, manualOverride string, excludeID int64) (string, error) {
	override := strings.ToUpper(strings.TrimSpace(manualOverride))
	if override == "" {
		return s.Next(ctx, q, yearLevel)
	}

	taken, err := s.applicationRepo.NumberExists(ctx, q, override, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperrors.NewDuplicateNumberError(override)
	}

	return override, nil
}
