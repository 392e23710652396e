package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/backend/internal/domain/shared"
)

func TestNewPatient(t *testing.T) {
	t.Run("valid patient", func(t *testing.T) {
		p, err := NewPatient("Ahmed", "Ben Salah", "01234567", "+216 22 123 456")
		require.NoError(t, err)
		assert.Equal(t, "Ahmed Ben Salah", p.FullName())
		assert.False(t, p.Archived)
	})

	t.Run("CIN is optional", func(t *testing.T) {
		p, err := NewPatient("Leila", "Trabelsi", "", "22123456")
		require.NoError(t, err)
		assert.Empty(t, p.CIN)
	})

	t.Run("malformed CIN", func(t *testing.T) {
		_, err := NewPatient("Ahmed", "Ben Salah", "1234", "22123456")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CIN", domainErr.Code)
		assert.Equal(t, "cin", domainErr.Field)
	})

	t.Run("missing phone", func(t *testing.T) {
		_, err := NewPatient("Ahmed", "Ben Salah", "01234567", "  ")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "phone", domainErr.Field)
	})

	t.Run("trims whitespace", func(t *testing.T) {
		p, err := NewPatient("  Ahmed ", " Ben Salah ", " 01234567 ", " 22123456 ")
		require.NoError(t, err)
		assert.Equal(t, "Ahmed", p.FirstName)
		assert.Equal(t, "01234567", p.CIN)
	})
}

func TestPatientUpdates(t *testing.T) {
	p, err := NewPatient("Ahmed", "Ben Salah", "01234567", "22123456")
	require.NoError(t, err)

	require.NoError(t, p.UpdateContact("98123456", "ahmed@example.tn", "Tunis"))
	assert.Equal(t, "98123456", p.Phone)
	assert.Error(t, p.UpdateContact("", "", ""))

	p.UpdateMedicalInfo("CNAM-123", "Dr. Gharbi")
	assert.Equal(t, "CNAM-123", p.CNAMCode)

	p.Archive()
	assert.True(t, p.Archived)
	p.Unarchive()
	assert.False(t, p.Archived)
}

func TestNewCompany(t *testing.T) {
	t.Run("valid company", func(t *testing.T) {
		c, err := NewCompany("Clinique El Amen", "1234567/A", "71123456")
		require.NoError(t, err)
		assert.Equal(t, "Clinique El Amen", c.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := NewCompany("  ", "", "")
		assert.Error(t, err)
	})
}
