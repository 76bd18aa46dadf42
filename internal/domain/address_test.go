package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeppelin/user-service/internal/domain"
)

func validAddress(t *testing.T) domain.Address {
	t.Helper()
	return domain.NewAddress(uuid.New(), "123 Main Street", "Apt 4B", "New York", "NY", "10001", "United States", "+1-555-123-4567")
}

func TestNewAddress(t *testing.T) {
	owner := uuid.New()
	addr := domain.NewAddress(owner, "123 Main Street", "", "New York", "NY", "10001", "United States", "+1-555-123-4567")

	assert.NotEqual(t, uuid.Nil, addr.ID)
	assert.Equal(t, owner, addr.UserID)
	assert.Equal(t, "123 Main Street", addr.Line1)

	// the factory stores fields verbatim, even invalid ones
	junk := domain.NewAddress(owner, "", "", "", "", "", "", "abc")
	assert.False(t, junk.Valid())
	assert.NotEqual(t, uuid.Nil, junk.ID)
}

func TestAddressWithTransformations(t *testing.T) {
	base := validAddress(t)

	t.Run("required fields reject blank values", func(t *testing.T) {
		_, err := base.WithLine1(" ")
		require.Error(t, err)
		_, err = base.WithCity("")
		require.Error(t, err)
		_, err = base.WithState("\t")
		require.Error(t, err)
		_, err = base.WithPostalCode("")
		require.Error(t, err)
		_, err = base.WithCountry("  ")
		require.Error(t, err)
	})

	t.Run("line2 accepts anything", func(t *testing.T) {
		cleared := base.WithLine2("")
		assert.Equal(t, "", cleared.Line2)
		set := base.WithLine2("Suite 900")
		assert.Equal(t, "Suite 900", set.Line2)
	})

	t.Run("replacement keeps identity", func(t *testing.T) {
		moved, err := base.WithCity("Boston")
		require.NoError(t, err)
		assert.Equal(t, base.ID, moved.ID)
		assert.Equal(t, base.UserID, moved.UserID)
		assert.Equal(t, "New York", base.City)
	})
}

func TestAddressWithPhoneNumber(t *testing.T) {
	base := validAddress(t)

	valid := []string{
		"+1-555-123-4567",
		"(555) 123 4567",
		"5551234",
		"+44 20 7946 0958",
	}
	for _, number := range valid {
		updated, err := base.WithPhoneNumber(number)
		require.NoError(t, err, number)
		assert.Equal(t, number, updated.PhoneNumber)
	}

	invalid := []struct {
		name   string
		number string
	}{
		{"blank", "   "},
		{"letters", "555-CALL-NOW"},
		{"too few digits", "555-123"},
		{"only punctuation", "+()-"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := base.WithPhoneNumber(tc.number)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "phoneNumber", validationErr.Field)
		})
	}
}

func TestAddressValid(t *testing.T) {
	addr := validAddress(t)
	assert.True(t, addr.Valid())

	// Valid checks blankness only, not phone format
	addr.PhoneNumber = "not really a phone"
	assert.True(t, addr.Valid())

	addr.PhoneNumber = " "
	assert.False(t, addr.Valid())

	addr = validAddress(t)
	addr.Line1 = ""
	assert.False(t, addr.Valid())

	addr = validAddress(t)
	addr.Line2 = ""
	assert.True(t, addr.Valid(), "line2 is optional")
}

func TestAddressFormatted(t *testing.T) {
	addr := validAddress(t)
	assert.Equal(t, "123 Main Street, Apt 4B, New York, NY 10001, United States", addr.Formatted())

	// deterministic
	assert.Equal(t, addr.Formatted(), addr.Formatted())

	noLine2 := addr.WithLine2("")
	assert.Equal(t, "123 Main Street, New York, NY 10001, United States", noLine2.Formatted())

	blankLine2 := addr.WithLine2("   ")
	assert.Equal(t, "123 Main Street, New York, NY 10001, United States", blankLine2.Formatted())
}
