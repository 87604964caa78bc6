package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/unirank/rankbrowser/internal/model"
	"github.com/unirank/rankbrowser/internal/response"
	"github.com/unirank/rankbrowser/internal/service"
	"github.com/unirank/rankbrowser/internal/validator"
)

// listQuery pages through the loaded list. Without per_page the whole list
// is one page.
type listQuery struct {
	Page    int `form:"page" json:"page" binding:"omitempty,min=1"`
	PerPage int `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=500"`
}

// APIHandler mirrors the browser operations as JSON under /api/v1.
type APIHandler struct {
	rankings *service.RankingService
	subjects *service.SubjectService
}

func NewAPIHandler(rankings *service.RankingService, subjects *service.SubjectService) *APIHandler {
	return &APIHandler{rankings: rankings, subjects: subjects}
}

// Health godoc
// GET /health
func (h *APIHandler) Health(c *gin.Context) {
	count, loadedAt := h.rankings.Status()
	body := gin.H{"status": "ok", "universities": count}
	if !loadedAt.IsZero() {
		body["loaded_at"] = loadedAt.UTC().Format(time.RFC3339)
	}
	response.Success(c, http.StatusOK, body)
}

// ListUniversities godoc
// GET /api/v1/universities?page=&per_page=
func (h *APIHandler) ListUniversities(c *gin.Context) {
	var q listQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if err := h.rankings.EnsureLoaded(c.Request.Context()); err != nil {
		failUpstream(c, err)
		return
	}

	all := h.rankings.Universities()
	pagination, start, end := response.NewPagination(q.Page, q.PerPage, len(all))
	page := all[start:end]
	if page == nil {
		page = []model.University{}
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"universities": page}, pagination)
}

// SearchUniversities godoc
// POST /api/v1/universities/search
func (h *APIHandler) SearchUniversities(c *gin.Context) {
	var criteria model.SearchCriteria
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &criteria); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	list, err := h.rankings.Search(c.Request.Context(), criteria)
	if err != nil {
		failUpstream(c, err)
		return
	}
	if list == nil {
		list = []model.University{}
	}
	response.Success(c, http.StatusOK, gin.H{"criteria": criteria, "universities": list})
}

// ResetUniversities godoc
// POST /api/v1/universities/reset
func (h *APIHandler) ResetUniversities(c *gin.Context) {
	criteria, list := h.rankings.Reset()
	if list == nil {
		list = []model.University{}
	}
	response.Success(c, http.StatusOK, gin.H{"criteria": criteria, "universities": list})
}

// GetUniversity godoc
// GET /api/v1/universities/:name
func (h *APIHandler) GetUniversity(c *gin.Context) {
	if err := h.rankings.EnsureLoaded(c.Request.Context()); err != nil {
		failUpstream(c, err)
		return
	}

	sel, ok := h.rankings.Select(c.Request.Context(), c.Param("name"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if sel.SubjectsErr != nil {
		failUpstream(c, sel.SubjectsErr)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"university": sel.University, "subjects": sel.Subjects})
}

// ListSubjects godoc
// GET /api/v1/subjects
func (h *APIHandler) ListSubjects(c *gin.Context) {
	catalog, err := h.subjects.Catalog(c.Request.Context())
	if err != nil {
		failUpstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": catalog.Subjects(), "catalog": catalog})
}

// ListSpecialties godoc
// GET /api/v1/subjects/:subject/specialties
func (h *APIHandler) ListSpecialties(c *gin.Context) {
	specialties, err := h.subjects.Specialties(c.Request.Context(), c.Param("subject"))
	if err != nil {
		failUpstream(c, err)
		return
	}
	if specialties == nil {
		specialties = []string{}
	}
	response.Success(c, http.StatusOK, gin.H{"specialties": specialties})
}

// SearchSubjects godoc
// POST /api/v1/subjects/search
func (h *APIHandler) SearchSubjects(c *gin.Context) {
	var req model.SubjectSearchRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.subjects.Search(c.Request.Context(), req)
	switch {
	case errors.Is(err, service.ErrSubjectRequired):
		response.Fail(c, http.StatusBadRequest, response.ErrSubjectRequired)
		return
	case errors.Is(err, service.ErrNoMatch):
		response.Fail(c, http.StatusNotFound, response.ErrNoMatch)
		return
	case err != nil:
		failUpstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
