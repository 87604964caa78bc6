package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/unirank/rankbrowser/internal/model"
	"github.com/unirank/rankbrowser/internal/response"
	"github.com/unirank/rankbrowser/internal/service"
	"github.com/unirank/rankbrowser/internal/validator"
	"github.com/unirank/rankbrowser/internal/view"
)

// PageHandler serves the server-rendered browser pages.
type PageHandler struct {
	rankings *service.RankingService
	subjects *service.SubjectService
	log      zerolog.Logger
}

func NewPageHandler(rankings *service.RankingService, subjects *service.SubjectService, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		rankings: rankings,
		subjects: subjects,
		log:      log.With().Str("component", "page_handler").Logger(),
	}
}

// Index godoc
// GET /?university=&modal=subject&subject=&specialty=
func (h *PageHandler) Index(c *gin.Context) {
	page := &view.IndexPage{}
	status := h.ensureLoaded(c, page)
	h.render(c, status, page, h.rankings.Universities(), "/?", c.Query("university"))
}

// University godoc
// GET /universities/:name
func (h *PageHandler) University(c *gin.Context) {
	page := &view.IndexPage{}
	status := h.ensureLoaded(c, page)
	h.render(c, status, page, h.rankings.Universities(), "/?", c.Param("name"))
}

// Search godoc
// GET /search?name=&rankFrom=&...
func (h *PageHandler) Search(c *gin.Context) {
	var criteria model.SearchCriteria
	if fields := validator.BindQuery(c, &criteria); fields != nil {
		page := &view.IndexPage{Error: msgSearchFailed + validator.Join(fields)}
		h.ensureLoaded(c, page)
		h.render(c, http.StatusBadRequest, page, h.rankings.Universities(), "/?", c.Query("university"))
		return
	}

	page := &view.IndexPage{Criteria: criteria}
	list, err := h.rankings.Search(c.Request.Context(), criteria)
	if err != nil {
		_ = c.Error(err)
		h.ensureLoaded(c, page)
		page.Error = msgSearchFailed + describe(err)
		h.render(c, http.StatusBadGateway, page, h.rankings.Universities(), "/?", c.Query("university"))
		return
	}

	// A failed overall load only costs the default selection here; the
	// result page itself is good.
	if err := h.rankings.EnsureLoaded(c.Request.Context()); err != nil {
		_ = c.Error(err)
	}

	linkBase := "/search?"
	if q := view.CriteriaQuery(criteria); q != "" {
		linkBase += q + "&"
	}
	h.render(c, http.StatusOK, page, list, linkBase, c.Query("university"))
}

// Reset godoc
// GET /reset
// Shows the full list already in memory; the list is never re-fetched here.
func (h *PageHandler) Reset(c *gin.Context) {
	criteria, list := h.rankings.Reset()
	page := &view.IndexPage{Criteria: criteria}
	h.render(c, http.StatusOK, page, list, "/?", c.Query("university"))
}

// SubjectSearch godoc
// POST /subject-search
func (h *PageHandler) SubjectSearch(c *gin.Context) {
	var req model.SubjectSearchRequest
	if fields := validator.BindForm(c, &req); fields != nil {
		h.renderModalAlert(c, http.StatusBadRequest, req, msgSearchFailed+validator.Join(fields))
		return
	}

	res, err := h.subjects.Search(c.Request.Context(), req)
	switch {
	case errors.Is(err, service.ErrSubjectRequired):
		h.renderModalAlert(c, http.StatusBadRequest, req, response.GetMessage(response.ErrSubjectRequired))
		return
	case errors.Is(err, service.ErrNoMatch):
		h.renderModalAlert(c, http.StatusOK, req, response.GetMessage(response.ErrNoMatch))
		return
	case err != nil:
		_ = c.Error(err)
		h.renderModalAlert(c, http.StatusBadGateway, req, msgSearchFailed+describe(err))
		return
	}

	c.HTML(http.StatusOK, view.ResultsTemplate, view.ResultsPage{
		Heading: view.ResultsHeading(res.Subject, res.Specialty),
		Total:   res.Total,
		Groups:  view.ResultGroups(res.Groups),
	})
}

// ────────────────────────────────────────────────────────────────────────────
// Page assembly
// ────────────────────────────────────────────────────────────────────────────

// ensureLoaded triggers the lazy list load and reports a failure on the page.
func (h *PageHandler) ensureLoaded(c *gin.Context, page *view.IndexPage) int {
	if err := h.rankings.EnsureLoaded(c.Request.Context()); err != nil {
		_ = c.Error(err)
		page.Error = msgLoadFailed + describe(err)
		return http.StatusBadGateway
	}
	return http.StatusOK
}

// render fills the list, the selection panels and the optional modal, then
// writes the index page. An unknown selection name falls back to the first
// university of the loaded list.
func (h *PageHandler) render(c *gin.Context, status int, page *view.IndexPage, list []model.University, linkBase, selected string) {
	ctx := c.Request.Context()

	var (
		sel *service.Selection
		ok  bool
	)
	if selected != "" {
		sel, ok = h.rankings.Select(ctx, selected)
	}
	if !ok {
		sel, ok = h.rankings.DefaultSelection(ctx)
	}
	if ok {
		page.Selected = sel.University.Name()
		page.Detail = view.DetailRows(sel.University)
		page.Subjects = view.SubjectRows(sel.Subjects)
		if sel.SubjectsErr != nil {
			_ = c.Error(sel.SubjectsErr)
			page.SubjectsError = msgSubjectFailed + describe(sel.SubjectsErr)
		}
	}

	page.Universities = view.ListRows(list, linkBase, page.Selected)

	if page.Modal == nil && c.Query("modal") == "subject" {
		subject, specialty := c.Query("subject"), c.Query("specialty")
		// The form echoes the subject it was rendered with; any change of
		// subject clears the specialty.
		if prev, ok := c.GetQuery("prev_subject"); ok && prev != subject {
			specialty = ""
		}
		page.Modal = h.subjectModal(ctx, subject, specialty)
	}

	c.HTML(status, view.IndexTemplate, page)
}

func (h *PageHandler) renderModalAlert(c *gin.Context, status int, req model.SubjectSearchRequest, alert string) {
	page := &view.IndexPage{Modal: h.subjectModal(c.Request.Context(), req.Subject, req.Specialty)}
	if page.Modal.Alert == "" {
		page.Modal.Alert = alert
	}
	h.ensureLoaded(c, page)
	h.render(c, status, page, h.rankings.Universities(), "/?", "")
}

// subjectModal builds the subject search dialog. An unknown subject leaves
// the specialty selector disabled, and a specialty outside the chosen
// subject is dropped.
func (h *PageHandler) subjectModal(ctx context.Context, subject, specialty string) *view.SubjectModal {
	modal := &view.SubjectModal{}

	catalog, err := h.subjects.Catalog(ctx)
	if err != nil {
		modal.Alert = msgCatalogFailed + describe(err)
		return modal
	}
	modal.Subjects = catalog.Subjects()

	specialties, ok := catalog.Specialties(subject)
	if !ok {
		return modal
	}
	modal.Subject = subject
	modal.Specialties = specialties
	for _, s := range specialties {
		if s == specialty {
			modal.Specialty = specialty
			break
		}
	}
	return modal
}
