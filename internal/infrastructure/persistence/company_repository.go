package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/medirent/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by ID. Returns nil, nil when not found.
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Company, error) {
	var company partner.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// FindByName finds a company by exact name. Returns nil, nil when not found.
func (r *GormCompanyRepository) FindByName(ctx context.Context, name string) (*partner.Company, error) {
	var company partner.Company
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// FindAll lists companies with filtering and pagination
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter partner.CompanyFilter) ([]partner.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&partner.Company{})

	if filter.Archived != nil {
		query = query.Where("archived = ?", *filter.Archived)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []partner.Company
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("name ASC").
		Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
