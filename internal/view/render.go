package view

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/unirank/rankbrowser/internal/model"
)

// Template names for gin's c.HTML.
const (
	IndexTemplate   = "index.tmpl"
	ResultsTemplate = "subject_results.tmpl"
)

// ResultsTitle titles the subject search results page.
const ResultsTitle = "学科和专业搜索结果"

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexPage is the main browser page: search form, list, detail and subject
// panels, and optionally the subject search modal.
type IndexPage struct {
	Criteria     model.SearchCriteria
	Error        string
	Universities []ListRow
	Detail       []DetailRow
	// Selected is the English name shown in the detail panel.
	Selected      string
	Subjects      []SubjectRow
	SubjectsError string
	Modal         *SubjectModal
}

// SubjectModal is the subject/specialty search dialog. The specialty
// selector is enabled only once a subject is chosen.
type SubjectModal struct {
	Subjects    []string
	Subject     string
	Specialties []string
	Specialty   string
	Alert       string
}

// SpecialtyEnabled reports whether the dependent selector is usable.
func (m *SubjectModal) SpecialtyEnabled() bool {
	return m.Subject != ""
}

// ResultsPage lists subject search results, one table per specialty.
type ResultsPage struct {
	Heading string
	Total   int
	Groups  []ResultGroup
}

// LoadTemplates parses the embedded page templates for gin's SetHTMLTemplate.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"emptyListMessage": func() string { return EmptyListMessage },
		"resultsTitle":     func() string { return ResultsTitle },
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// StaticFS serves the embedded stylesheet.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
