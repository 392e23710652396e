package partner

import (
	"strings"
	"time"

	"github.com/medirent/backend/internal/domain/shared"
)

// Company represents a corporate payer: a clinic, an employer or an insurer
// paying on behalf of patients.
type Company struct {
	shared.BaseAggregateRoot
	Name      string `gorm:"type:varchar(200);not null;uniqueIndex"`
	TaxNumber string `gorm:"type:varchar(50)"`
	Phone     string `gorm:"type:varchar(20)"`
	Email     string `gorm:"type:varchar(255)"`
	Address   string
	Notes     string
	Archived  bool `gorm:"not null;default:false"`
}

// NewCompany creates a company payer
func NewCompany(name, taxNumber, phone string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainFieldError("INVALID_NAME", "name", "La raison sociale est obligatoire")
	}

	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		TaxNumber:         strings.TrimSpace(taxNumber),
		Phone:             strings.TrimSpace(phone),
	}, nil
}

// UpdateContact updates phone, email and address
func (c *Company) UpdateContact(phone, email, address string) {
	c.Phone = strings.TrimSpace(phone)
	c.Email = strings.TrimSpace(email)
	c.Address = strings.TrimSpace(address)
	c.UpdatedAt = time.Now()
}

// Archive hides the company from pickers without deleting history
func (c *Company) Archive() {
	c.Archived = true
	c.UpdatedAt = time.Now()
}
