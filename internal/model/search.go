package model

// SearchCriteria filters the overall ranking. Every field is optional; an
// empty field means "unconstrained" and is left out of the request body
// entirely (omitempty), never sent as zero or "". Non-empty values pass
// through as typed; the ranking API does its own parsing.
type SearchCriteria struct {
	Name               string `form:"name" json:"name,omitempty"`
	RankFrom           string `form:"rankFrom" json:"rankFrom,omitempty"`
	RankTo             string `form:"rankTo" json:"rankTo,omitempty"`
	AcceptanceRateFrom string `form:"acceptanceRateFrom" json:"acceptanceRateFrom,omitempty"`
	AcceptanceRateTo   string `form:"acceptanceRateTo" json:"acceptanceRateTo,omitempty"`
	TuitionFrom        string `form:"tuitionFrom" json:"tuitionFrom,omitempty"`
	TuitionTo          string `form:"tuitionTo" json:"tuitionTo,omitempty"`
	SATFrom            string `form:"satFrom" json:"satFrom,omitempty"`
	ACTFrom            string `form:"actFrom" json:"actFrom,omitempty"`
	GPAFrom            string `form:"gpaFrom" json:"gpaFrom,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (c SearchCriteria) IsEmpty() bool {
	return c == SearchCriteria{}
}

// SubjectSearchRequest selects a subject and, optionally, one specialty.
// Specialty is always transmitted; empty asks for the whole subject.
type SubjectSearchRequest struct {
	Subject   string `form:"subject" json:"subject"`
	Specialty string `form:"specialty" json:"specialty"`
}

// SubjectSearchResult is one university's row in a subject search.
type SubjectSearchResult struct {
	ChineseName    Text `json:"大学名称"`
	EnglishName    Text `json:"University Name"`
	Subject        Text `json:"subject"`
	Specialty      Text `json:"specialty"`
	OverallRanking Text `json:"overall_ranking"`
	SubjectRanking Text `json:"subject_ranking"`

	// USNewsRank is resolved separately per row; never empty once resolved.
	USNewsRank string `json:"us_news_rank,omitempty"`
}

// SpecialtyGroup collects subject search results sharing a specialty.
type SpecialtyGroup struct {
	Specialty string                `json:"specialty"`
	Results   []SubjectSearchResult `json:"results"`
}
