package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/medirent/backend/internal/domain/shared"
)

var cinPattern = regexp.MustCompile(`^[0-9]{8}$`)

// Patient represents a patient, the main counterparty of rentals, sales and
// diagnostics. CIN and phone are deduplication keys.
type Patient struct {
	shared.BaseAggregateRoot
	FirstName   string `gorm:"type:varchar(100);not null"`
	LastName    string `gorm:"type:varchar(100);not null"`
	CIN         string `gorm:"type:varchar(8);uniqueIndex"`
	Phone       string `gorm:"type:varchar(20);index;not null"`
	Email       string `gorm:"type:varchar(255)"`
	Address     string
	DateOfBirth *time.Time
	CNAMCode    string `gorm:"type:varchar(50)"`
	DoctorName  string `gorm:"type:varchar(100)"`
	Notes       string
	Archived    bool `gorm:"not null;default:false"`
}

// NewPatient creates a patient. CIN is optional (minors have none) but must
// be eight digits when present.
func NewPatient(firstName, lastName, cin, phone string) (*Patient, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	cin = strings.TrimSpace(cin)
	phone = strings.TrimSpace(phone)

	if firstName == "" {
		return nil, shared.NewDomainFieldError("INVALID_NAME", "first_name", "Le prénom est obligatoire")
	}
	if lastName == "" {
		return nil, shared.NewDomainFieldError("INVALID_NAME", "last_name", "Le nom est obligatoire")
	}
	if cin != "" && !cinPattern.MatchString(cin) {
		return nil, shared.NewDomainFieldError("INVALID_CIN", "cin", "Le CIN doit comporter exactement 8 chiffres")
	}
	if phone == "" {
		return nil, shared.NewDomainFieldError("INVALID_PHONE", "phone", "Le numéro de téléphone est obligatoire")
	}

	return &Patient{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         firstName,
		LastName:          lastName,
		CIN:               cin,
		Phone:             phone,
	}, nil
}

// FullName returns the display name
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// UpdateContact updates phone, email and address
func (p *Patient) UpdateContact(phone, email, address string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return shared.NewDomainFieldError("INVALID_PHONE", "phone", "Le numéro de téléphone est obligatoire")
	}

	p.Phone = phone
	p.Email = strings.TrimSpace(email)
	p.Address = strings.TrimSpace(address)
	p.UpdatedAt = time.Now()

	return nil
}

// UpdateMedicalInfo updates the CNAM affiliation code and treating doctor
func (p *Patient) UpdateMedicalInfo(cnamCode, doctorName string) {
	p.CNAMCode = strings.TrimSpace(cnamCode)
	p.DoctorName = strings.TrimSpace(doctorName)
	p.UpdatedAt = time.Now()
}

// Archive hides the patient from pickers without deleting history
func (p *Patient) Archive() {
	p.Archived = true
	p.UpdatedAt = time.Now()
}

// Unarchive restores the patient to pickers
func (p *Patient) Unarchive() {
	p.Archived = false
	p.UpdatedAt = time.Now()
}
