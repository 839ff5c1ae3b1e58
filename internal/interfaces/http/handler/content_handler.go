package handler

import (
	"net/http"

	"github.com/YouSangSon/academy-backoffice/internal/application/content"
	"github.com/YouSangSon/academy-backoffice/internal/application/dto"
	"github.com/YouSangSon/academy-backoffice/internal/application/leads"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/gin-gonic/gin"
)

// ContentHandler는 공개 사이트용 핸들러입니다
type ContentHandler struct {
	catalog *content.Catalog
	leads   *leads.Service
}

// NewContentHandler는 새로운 ContentHandler를 생성합니다
func NewContentHandler(catalog *content.Catalog, leadsSvc *leads.Service) *ContentHandler {
	return &ContentHandler{catalog: catalog, leads: leadsSvc}
}

// List는 콘텐츠 컬렉션 전체를 반환합니다
// GET /api/v1/content/:collection
func (h *ContentHandler) List(c *gin.Context) {
	name := c.Param("collection")
	items, err := h.catalog.List(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse{Collection: name, Items: items, Count: len(items)})
}

// CurrentClass는 현재 모집 중인 기수를 반환합니다
// GET /api/v1/content/classes/current
func (h *ContentHandler) CurrentClass(c *gin.Context) {
	rec, err := h.catalog.CurrentClass(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec.Document())
}

// SubmitLead는 문의 폼을 저장합니다
// POST /api/v1/leads
func (h *ContentHandler) SubmitLead(c *gin.Context) {
	var lead entity.Lead
	if err := c.ShouldBindJSON(&lead); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	rec, err := h.leads.SubmitLead(c.Request.Context(), &lead)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SubmissionResponse{ID: rec.ID(), CreatedAt: rec.CreatedAt()})
}

// SubmitRegistration은 수강 신청 폼을 저장합니다
// POST /api/v1/registrations
func (h *ContentHandler) SubmitRegistration(c *gin.Context) {
	var reg entity.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	rec, err := h.leads.SubmitRegistration(c.Request.Context(), &reg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.SubmissionResponse{ID: rec.ID(), CreatedAt: rec.CreatedAt()})
}
