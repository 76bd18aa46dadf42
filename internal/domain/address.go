package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	phonePattern   = regexp.MustCompile(`^[\d\s()+-]+$`)
	phoneDigits    = regexp.MustCompile(`\D`)
	phoneMinDigits = 7
)

// Address is a postal address exclusively owned by one user. Its lifecycle
// follows the owner: it is created alongside the user (or attached on
// update) and removed when the user is deleted.
type Address struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Line1       string
	Line2       string
	City        string
	State       string
	PostalCode  string
	Country     string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAddress builds an address with a fresh id, linked to the given owner.
// Fields are stored verbatim; constraints are enforced by the WithX
// transformations and by the owning user's higher-level validation.
func NewAddress(userID uuid.UUID, line1, line2, city, state, postalCode, country, phoneNumber string) Address {
	return Address{
		ID:          uuid.New(),
		UserID:      userID,
		Line1:       line1,
		Line2:       line2,
		City:        city,
		State:       state,
		PostalCode:  postalCode,
		Country:     country,
		PhoneNumber: phoneNumber,
	}
}

// Initialize stamps a fresh identity onto the address and links it to the
// given owner.
func (a Address) Initialize(userID uuid.UUID) Address {
	a.ID = uuid.New()
	a.UserID = userID
	return a
}

// WithLine1 returns a copy with line1 replaced.
func (a Address) WithLine1(line1 string) (Address, error) {
	if isBlank(line1) {
		return Address{}, newValidationError("line1", "cannot be empty")
	}
	a.Line1 = line1
	return a, nil
}

// WithLine2 returns a copy with line2 replaced. Line2 is optional and may
// be blank.
func (a Address) WithLine2(line2 string) Address {
	a.Line2 = line2
	return a
}

// WithCity returns a copy with the city replaced.
func (a Address) WithCity(city string) (Address, error) {
	if isBlank(city) {
		return Address{}, newValidationError("city", "cannot be empty")
	}
	a.City = city
	return a, nil
}

// WithState returns a copy with the state replaced.
func (a Address) WithState(state string) (Address, error) {
	if isBlank(state) {
		return Address{}, newValidationError("state", "cannot be empty")
	}
	a.State = state
	return a, nil
}

// WithPostalCode returns a copy with the postal code replaced.
func (a Address) WithPostalCode(postalCode string) (Address, error) {
	if isBlank(postalCode) {
		return Address{}, newValidationError("postalCode", "cannot be empty")
	}
	a.PostalCode = postalCode
	return a, nil
}

// WithCountry returns a copy with the country replaced.
func (a Address) WithCountry(country string) (Address, error) {
	if isBlank(country) {
		return Address{}, newValidationError("country", "cannot be empty")
	}
	a.Country = country
	return a, nil
}

// WithPhoneNumber returns a copy with the phone number replaced. The value
// may contain digits, spaces, dashes, parentheses and plus signs, and must
// carry at least seven digits.
func (a Address) WithPhoneNumber(phoneNumber string) (Address, error) {
	if isBlank(phoneNumber) {
		return Address{}, newValidationError("phoneNumber", "cannot be empty")
	}
	if !phonePattern.MatchString(phoneNumber) {
		return Address{}, newValidationError("phoneNumber", "invalid phone number format")
	}
	if len(phoneDigits.ReplaceAllString(phoneNumber, "")) < phoneMinDigits {
		return Address{}, newValidationError("phoneNumber", "invalid phone number format")
	}
	a.PhoneNumber = phoneNumber
	return a, nil
}

// Valid reports whether every required field is non-blank. It checks
// blankness only; phone format is enforced by WithPhoneNumber.
func (a Address) Valid() bool {
	return !isBlank(a.Line1) &&
		!isBlank(a.City) &&
		!isBlank(a.State) &&
		!isBlank(a.PostalCode) &&
		!isBlank(a.Country) &&
		!isBlank(a.PhoneNumber)
}

// Formatted renders the address as a single line, omitting line2 when it
// is blank.
func (a Address) Formatted() string {
	var sb strings.Builder
	sb.WriteString(a.Line1)
	if !isBlank(a.Line2) {
		sb.WriteString(", ")
		sb.WriteString(a.Line2)
	}
	sb.WriteString(", ")
	sb.WriteString(a.City)
	sb.WriteString(", ")
	sb.WriteString(a.State)
	sb.WriteString(" ")
	sb.WriteString(a.PostalCode)
	sb.WriteString(", ")
	sb.WriteString(a.Country)
	return sb.String()
}
