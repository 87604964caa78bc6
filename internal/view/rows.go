// Package view turns ranking data into display rows and renders the HTML
// pages. Row builders are pure; missing values become model.NotAvailable.
package view

import (
	"net/url"
	"strings"

	"github.com/unirank/rankbrowser/internal/model"
)

// EmptyListMessage replaces the list table when there is nothing to show.
const EmptyListMessage = "没有找到匹配的大学。"

// placeholder marks an absent specialty in the subject table.
const placeholder = "-"

// ListRow is one clickable line of the university list.
type ListRow struct {
	Rank        string
	EnglishName string
	ChineseName string
	// Href selects this university; empty when the record has no name.
	Href     string
	Selected bool
}

// ListRows builds the list rows. linkBase is the URL prefix each selection
// link extends with a university parameter (e.g. "/?" or "/search?name=x&").
func ListRows(list []model.University, linkBase, selected string) []ListRow {
	rows := make([]ListRow, len(list))
	for i, u := range list {
		rows[i] = ListRow{
			Rank:        orNA(u.Rank()),
			EnglishName: orNA(u.Name()),
			ChineseName: orNA(u.ChineseName()),
			Selected:    selected != "" && u.Name() == selected,
		}
		if name := u.Name(); name != "" {
			rows[i].Href = linkBase + "university=" + url.QueryEscape(name)
		}
	}
	return rows
}

// DetailRow is one labelled field of the detail table. Link is set only for
// the website row.
type DetailRow struct {
	Label string
	Value string
	Link  string
}

type detailField struct {
	key   string
	label string
}

// detailFields is the fixed display order of the detail table.
var detailFields = []detailField{
	{model.FieldRank, "美国大学综合排名"},
	{model.FieldEnglishName, ""},
	{model.FieldChineseName, "大学名称"},
	{model.FieldWebsite, "大学网址"},
	{model.FieldPublicPrivate, "公立/私立"},
	{model.FieldAcceptanceRate, "录取率"},
	{model.FieldSATRange, "SAT分数范围"},
	{model.FieldACTRange, "ACT分数范围"},
	{model.FieldGPA, "高中平均绩点"},
	{model.FieldTuition, "学费"},
	{model.FieldHousing, "食宿费"},
	{model.FieldGraduationRate, "4年毕业率"},
	{model.FieldFacultyRatio, "师生比"},
	{model.FieldSmallClasses, "20人以下小比例"},
	{model.FieldMedianSalary, "毕业6年后的中位数薪资"},
}

// DetailRows builds the detail table for u.
func DetailRows(u model.University) []DetailRow {
	rows := make([]DetailRow, len(detailFields))
	for i, f := range detailFields {
		label := f.key
		if f.label != "" {
			label = f.key + " (" + f.label + ")"
		}
		rows[i] = DetailRow{Label: label}

		if f.key == model.FieldWebsite {
			site := u.Website()
			rows[i].Value = orNA(site)
			if site != "" {
				rows[i].Link = websiteHref(site)
			}
			continue
		}
		rows[i].Value = orNA(u.Get(f.key))
	}
	return rows
}

func websiteHref(site string) string {
	if strings.HasPrefix(site, "http") {
		return site
	}
	return "https://" + site
}

// SubjectRow is one line of the subject ranking table. Continuation rows
// leave Subject and OverallRank blank so the subject reads as merged.
type SubjectRow struct {
	Subject       string
	OverallRank   string
	Specialty     string
	SpecialtyRank string
	Continuation  bool
}

// SubjectRows flattens subject rankings into table rows.
func SubjectRows(entries []model.SubjectRanking) []SubjectRow {
	var rows []SubjectRow
	for _, e := range entries {
		head := SubjectRow{Subject: e.Subject, OverallRank: orNA(e.OverallRank.String())}
		if len(e.Specialties) == 0 {
			head.Specialty, head.SpecialtyRank = placeholder, placeholder
			rows = append(rows, head)
			continue
		}
		for i, s := range e.Specialties {
			row := SubjectRow{Continuation: i > 0}
			if i == 0 {
				row = head
			}
			row.Specialty = s.Name.String()
			row.SpecialtyRank = orNA(s.Rank.String())
			rows = append(rows, row)
		}
	}
	return rows
}

// ResultRow is one university in a subject search result table.
type ResultRow struct {
	SubjectRanking string
	ChineseName    string
	EnglishName    string
	Subject        string
	OverallRanking string
	USNewsRank     string
}

// ResultGroup is one specialty's table on the results page.
type ResultGroup struct {
	Specialty string
	Rows      []ResultRow
}

// ResultGroups converts grouped search results into display tables.
func ResultGroups(groups []model.SpecialtyGroup) []ResultGroup {
	out := make([]ResultGroup, len(groups))
	for i, g := range groups {
		out[i] = ResultGroup{Specialty: g.Specialty, Rows: make([]ResultRow, len(g.Results))}
		for j, r := range g.Results {
			out[i].Rows[j] = ResultRow{
				SubjectRanking: orNA(r.SubjectRanking.String()),
				ChineseName:    orNA(r.ChineseName.String()),
				EnglishName:    orNA(r.EnglishName.String()),
				Subject:        orNA(r.Subject.String()),
				OverallRanking: orNA(r.OverallRanking.String()),
				USNewsRank:     r.USNewsRank,
			}
		}
	}
	return out
}

// ResultsHeading is "subject - specialty", or just the subject.
func ResultsHeading(subject, specialty string) string {
	if specialty == "" {
		return subject
	}
	return subject + " - " + specialty
}

func orNA(s string) string {
	if s == "" {
		return model.NotAvailable
	}
	return s
}

// CriteriaQuery encodes the non-empty criteria as a query string, in the
// parameter names of the search form.
func CriteriaQuery(c model.SearchCriteria) string {
	v := url.Values{}
	for _, p := range []struct{ key, val string }{
		{"name", c.Name},
		{"rankFrom", c.RankFrom},
		{"rankTo", c.RankTo},
		{"acceptanceRateFrom", c.AcceptanceRateFrom},
		{"acceptanceRateTo", c.AcceptanceRateTo},
		{"tuitionFrom", c.TuitionFrom},
		{"tuitionTo", c.TuitionTo},
		{"satFrom", c.SATFrom},
		{"actFrom", c.ACTFrom},
		{"gpaFrom", c.GPAFrom},
	} {
		if p.val != "" {
			v.Set(p.key, p.val)
		}
	}
	return v.Encode()
}
