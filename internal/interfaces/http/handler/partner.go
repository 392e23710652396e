package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/medirent/backend/internal/application/partner"
)

// PartnerHandler handles patient and company API endpoints
type PartnerHandler struct {
	BaseHandler
	partnerService *partnerapp.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partnerService *partnerapp.PartnerService) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService}
}

// RegisterRoutes registers patient and company routes
func (h *PartnerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	patients := rg.Group("/patients")
	patients.POST("", h.CreatePatient)
	patients.GET("", h.ListPatients)
	patients.GET("/:id", h.GetPatient)
	patients.PUT("/:id", h.UpdatePatient)
	patients.POST("/:id/archive", h.ArchivePatient)

	companies := rg.Group("/companies")
	companies.POST("", h.CreateCompany)
	companies.GET("", h.ListCompanies)
	companies.GET("/:id", h.GetCompany)
}

// CreatePatient registers a patient
func (h *PartnerHandler) CreatePatient(c *gin.Context) {
	var req partnerapp.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	patient, err := h.partnerService.CreatePatient(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, patient)
}

// GetPatient returns one patient
func (h *PartnerHandler) GetPatient(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	patient, err := h.partnerService.GetPatient(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, patient)
}

// UpdatePatient updates contact and medical info
func (h *PartnerHandler) UpdatePatient(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req partnerapp.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	patient, err := h.partnerService.UpdatePatient(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, patient)
}

// ArchivePatient archives a patient
func (h *PartnerHandler) ArchivePatient(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.partnerService.ArchivePatient(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPatients returns patients with filtering and pagination
func (h *PartnerHandler) ListPatients(c *gin.Context) {
	var filter partnerapp.PatientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	patients, total, err := h.partnerService.ListPatients(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, patients, total, filter.Page, filter.PageSize)
}

// CreateCompany registers a company payer
func (h *PartnerHandler) CreateCompany(c *gin.Context) {
	var req partnerapp.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	company, err := h.partnerService.CreateCompany(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// GetCompany returns one company
func (h *PartnerHandler) GetCompany(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	company, err := h.partnerService.GetCompany(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// ListCompanies returns companies with filtering and pagination
func (h *PartnerHandler) ListCompanies(c *gin.Context) {
	var query struct {
		Search   string `form:"search"`
		Archived *bool  `form:"archived"`
		Page     int    `form:"page"`
		PageSize int    `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	companies, total, err := h.partnerService.ListCompanies(c.Request.Context(), query.Search, query.Archived, query.Page, query.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, companies, total, query.Page, query.PageSize)
}
