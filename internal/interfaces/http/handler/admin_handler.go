package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/audit"
	"github.com/YouSangSon/academy-backoffice/internal/application/content"
	"github.com/YouSangSon/academy-backoffice/internal/application/dto"
	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
	"github.com/YouSangSon/academy-backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler는 관리자 컬렉션 편집 핸들러입니다
type AdminHandler struct {
	registry *content.Registry
}

// NewAdminHandler는 새로운 AdminHandler를 생성합니다
func NewAdminHandler(registry *content.Registry) *AdminHandler {
	return &AdminHandler{registry: registry}
}

// service는 경로의 컬렉션에 해당하는 Manager를 찾습니다. 없으면 응답을 쓰고 false를 반환합니다
func (h *AdminHandler) service(c *gin.Context) (content.Manager, bool) {
	name := c.Param("collection")
	svc, ok := h.registry.Service(name)
	if !ok {
		respondError(c, &entity.ValidationError{Field: "collection", Reason: "unknown collection " + strconv.Quote(name), Err: entity.ErrInvalidCollection})
		return nil, false
	}
	return svc, true
}

// List는 컬렉션 문서를 반환합니다. where=field,op,value 쿼리로 필터를 줄 수 있습니다
// GET /api/v1/admin/collections/:collection
func (h *AdminHandler) List(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}

	filters, err := parseFilters(c.QueryArray("where"))
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := svc.List(c.Request.Context(), filters...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(svc.Collection(), records))
}

// Get은 문서 하나를 반환합니다
// GET /api/v1/admin/collections/:collection/:id
func (h *AdminHandler) Get(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}

	rec, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec.Document())
}

// Create는 문서를 생성합니다
// POST /api/v1/admin/collections/:collection
func (h *AdminHandler) Create(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	shape, ok := bindShape(c, svc.Collection())
	if !ok {
		return
	}

	rec, err := svc.Create(c.Request.Context(), actor(c), shape)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec.Document())
}

// Update는 문서를 수정합니다
// PUT /api/v1/admin/collections/:collection/:id
func (h *AdminHandler) Update(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}
	shape, ok := bindShape(c, svc.Collection())
	if !ok {
		return
	}

	rec, err := svc.Update(c.Request.Context(), actor(c), c.Param("id"), shape)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec.Document())
}

// Delete는 문서를 삭제합니다
// DELETE /api/v1/admin/collections/:collection/:id
func (h *AdminHandler) Delete(c *gin.Context) {
	svc, ok := h.service(c)
	if !ok {
		return
	}

	if err := svc.Delete(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetCurrentClass는 기수 하나를 현재 모집 중으로 표시합니다
// PUT /api/v1/admin/classes/:id/current
func (h *AdminHandler) SetCurrentClass(c *gin.Context) {
	rec, err := h.registry.Classes().SetCurrentClass(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec.Document())
}

// LogsHandler는 감사 로그 조회/정리 핸들러입니다
type LogsHandler struct {
	audit *audit.Logger
}

// NewLogsHandler는 새로운 LogsHandler를 생성합니다
func NewLogsHandler(auditLog *audit.Logger) *LogsHandler {
	return &LogsHandler{audit: auditLog}
}

// List는 감사 로그를 최신순으로 반환합니다
// GET /api/v1/admin/logs?action=&collection=&status=&adminId=&since=&limit=
func (h *LogsHandler) List(c *gin.Context) {
	q := audit.Query{
		Action:     entity.Action(c.Query("action")),
		Collection: c.Query("collection"),
		Status:     entity.LogStatus(c.Query("status")),
		AdminID:    c.Query("adminId"),
	}
	if s := c.Query("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			badRequest(c, "since must be an RFC3339 timestamp", err)
			return
		}
		q.Since = since
	}
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer", err)
			return
		}
		q.Limit = limit
	}

	entries, err := h.audit.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.NewLogEntryResponse(e))
	}
	c.JSON(http.StatusOK, dto.LogListResponse{Items: items, Count: len(items)})
}

// Purge는 before 이전의 감사 로그를 삭제합니다
// DELETE /api/v1/admin/logs?before=RFC3339
func (h *LogsHandler) Purge(c *gin.Context) {
	before, err := time.Parse(time.RFC3339, c.Query("before"))
	if err != nil {
		badRequest(c, "before must be an RFC3339 timestamp", err)
		return
	}

	n, err := h.audit.Purge(c.Request.Context(), actor(c), before)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PurgeLogsResponse{Deleted: n, Before: before.UTC()})
}

// actor는 인증된 세션의 관리자를 반환합니다
func actor(c *gin.Context) audit.Actor {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return audit.Actor{}
	}
	return audit.Actor{ID: session.AdminID, Email: session.Email}
}

// bindShape는 요청 본문을 컬렉션의 Shape로 디코딩합니다
func bindShape(c *gin.Context, collection string) (entity.Shape, bool) {
	shape, ok := entity.NewShape(collection)
	if !ok {
		respondError(c, entity.ErrInvalidCollection)
		return nil, false
	}
	if err := c.ShouldBindJSON(shape); err != nil {
		badRequest(c, "invalid request body", err)
		return nil, false
	}
	return shape, true
}

// parseFilters는 "field,op,value" 형식의 쿼리 값을 Filter로 바꿉니다
func parseFilters(raw []string) ([]entity.Filter, error) {
	filters := make([]entity.Filter, 0, len(raw))
	for _, r := range raw {
		parts := strings.SplitN(r, ",", 3)
		if len(parts) != 3 {
			return nil, entity.NewValidationError("where", "expected field,op,value")
		}
		op, ok := entity.ParseFilterOp(parts[1])
		if !ok {
			return nil, entity.NewValidationError("where", "unknown operator "+strconv.Quote(parts[1]))
		}
		f := entity.Where(parts[0], op, parseFilterValue(parts[2]))
		if err := f.Validate(); err != nil {
			return nil, &entity.ValidationError{Field: "where", Reason: err.Error(), Err: err}
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// parseFilterValue는 쿼리 문자열 값을 bool, 숫자, 시간 순으로 해석하고 실패하면 문자열로 둡니다
func parseFilterValue(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return s
}
