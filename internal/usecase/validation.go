package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var leadCategories = map[string]bool{
	"construction": true,
	"party":        true,
	"medical":      true,
}

var rentalDurations = map[string]bool{
	"daily":    true,
	"weekly":   true,
	"monthly":  true,
	"longterm": true,
}

var budgetBands = map[string]bool{
	"0-500":      true,
	"500-1000":   true,
	"1000-5000":  true,
	"5000-10000": true,
	"10000+":     true,
}

func ValidateSubmitLeadInput(input SubmitLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Category) == "" {
		errors = append(errors, ValidationError{"category", "is required"})
	} else if !leadCategories[input.Category] {
		errors = append(errors, ValidationError{"category", "must be construction, party or medical"})
	}

	if len(input.EquipmentTypes) == 0 {
		errors = append(errors, ValidationError{"equipment_types", "at least one equipment type is required"})
	} else {
		for _, e := range input.EquipmentTypes {
			if strings.TrimSpace(e) == "" {
				errors = append(errors, ValidationError{"equipment_types", "must not contain empty entries"})
				break
			}
		}
	}

	if strings.TrimSpace(input.RentalDuration) == "" {
		errors = append(errors, ValidationError{"rental_duration", "is required"})
	} else if !rentalDurations[input.RentalDuration] {
		errors = append(errors, ValidationError{"rental_duration", "must be daily, weekly, monthly or longterm"})
	}

	if strings.TrimSpace(input.StartDate) == "" {
		errors = append(errors, ValidationError{"start_date", "is required"})
	} else if !isValidDate(input.StartDate) {
		errors = append(errors, ValidationError{"start_date", "must be a valid date (YYYY-MM-DD)"})
	}

	if strings.TrimSpace(input.Budget) == "" {
		errors = append(errors, ValidationError{"budget", "is required"})
	} else if !budgetBands[input.Budget] {
		errors = append(errors, ValidationError{"budget", "must be a known budget range"})
	}

	if strings.TrimSpace(input.Street) == "" {
		errors = append(errors, ValidationError{"street", "is required"})
	}
	if strings.TrimSpace(input.City) == "" {
		errors = append(errors, ValidationError{"city", "is required"})
	}
	if !isValidZipCode(input.ZipCode) {
		errors = append(errors, ValidationError{"zip_code", "must be a valid zip code (XXXXX)"})
	}

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errors = append(errors, ValidationError{"phone", "is required"})
	} else if !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if len(input.Details) > 2000 {
		errors = append(errors, ValidationError{"details", "must not exceed 2000 characters"})
	}

	return errors
}

func isValidDate(dateStr string) bool {
	if _, err := time.Parse("2006-01-02", dateStr); err == nil {
		return true
	}
	if _, err := time.Parse(time.RFC3339, dateStr); err == nil {
		return true
	}
	return false
}

func isValidPhoneNumber(phone string) bool {
	cleaned := regexp.MustCompile(`\D`).ReplaceAllString(phone, "")
	return len(cleaned) >= 10 && len(cleaned) <= 11
}

func isValidZipCode(zipcode string) bool {
	cleaned := regexp.MustCompile(`\D`).ReplaceAllString(zipcode, "")
	return len(cleaned) == 5 || len(cleaned) == 9
}
