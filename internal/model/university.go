package model

// Field names used by the ranking API for university records.
const (
	FieldRank           = "US Rank"
	FieldEnglishName    = "University Name"
	FieldChineseName    = "大学名称"
	FieldWebsite        = "School Website"
	FieldWebsiteAlt     = " School Website" // leading space is an upstream data quirk
	FieldPublicPrivate  = "Public/Private"
	FieldAcceptanceRate = "Acceptance Rate"
	FieldSATRange       = "SAT Range*"
	FieldACTRange       = "ACT Range*"
	FieldGPA            = "High School GPA*"
	FieldTuition        = "Tuition & Fees"
	FieldHousing        = "Food & Housing"
	FieldGraduationRate = "4-Year Graduation Rate"
	FieldFacultyRatio   = "Student/Faculty Ratio"
	FieldSmallClasses   = "Classes With Fewer Than 20 Students"
	FieldMedianSalary   = "Median Salary 6 Years After Graduation"
)

// NotAvailable is the placeholder shown for missing values.
const NotAvailable = "N/A"

// University is one record of the overall ranking, keyed by API field name.
// Records are never mutated after decoding; lists are replaced wholesale.
type University map[string]Text

// Get returns the value of field, or "" when absent.
func (u University) Get(field string) string {
	return string(u[field])
}

// Name returns the English name, the record's identity key.
func (u University) Name() string {
	return u.Get(FieldEnglishName)
}

// ChineseName returns the Chinese name.
func (u University) ChineseName() string {
	return u.Get(FieldChineseName)
}

// Rank returns the overall US rank as published (e.g. "#1").
func (u University) Rank() string {
	return u.Get(FieldRank)
}

// Website returns the school website, falling back to the leading-space key
// when the primary key is missing or holds the "N/A" placeholder. Returns ""
// when neither key carries a usable value.
func (u University) Website() string {
	site := u.Get(FieldWebsite)
	if site == "" || site == NotAvailable {
		site = u.Get(FieldWebsiteAlt)
	}
	if site == NotAvailable {
		return ""
	}
	return site
}
