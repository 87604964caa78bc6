package model

import "sort"

// Specialty is a sub-area of a subject with its own ranking.
type Specialty struct {
	Name Text `json:"name"`
	Rank Text `json:"rank"`
}

// SubjectRanking is a university's standing in one subject, with its
// specialties in the order the API returned them.
type SubjectRanking struct {
	Subject     string      `json:"subject"`
	OverallRank Text        `json:"overall_rank"`
	Specialties []Specialty `json:"specialties"`
}

// Catalog maps subject name to the specialty names offered under it.
type Catalog map[string][]string

// Subjects returns the catalog's subjects in sorted order.
func (c Catalog) Subjects() []string {
	subjects := make([]string, 0, len(c))
	for s := range c {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects
}

// Specialties returns the specialties of subject and whether the subject exists.
func (c Catalog) Specialties(subject string) ([]string, bool) {
	specialties, ok := c[subject]
	return specialties, ok
}
