package analysis

// Role is the declared institutional role of the submission's author.
type Role string

const (
	RoleStudent                Role = "Student"
	RoleFacultyResearcher      Role = "Faculty researcher"
	RoleResearchTrainee        Role = "Research trainee"
	RoleExternalCoInvestigator Role = "External co-investigator"
	RoleOther                  Role = "Other"
)

// DocumentType classifies the submitted document.
type DocumentType string

const (
	DocumentEssay             DocumentType = "Essay"
	DocumentScientificArticle DocumentType = "Scientific article"
	DocumentThesis            DocumentType = "Thesis"
	DocumentTechnicalReport   DocumentType = "Technical report"
	DocumentCoursework        DocumentType = "Coursework"
	DocumentCapstoneProject   DocumentType = "Capstone project"
	DocumentOther             DocumentType = "Other"
)

var roleMultipliers = map[Role]float64{
	RoleStudent:                1.0,
	RoleFacultyResearcher:      0.7,
	RoleResearchTrainee:        0.9,
	RoleExternalCoInvestigator: 0.6,
	RoleOther:                  0.8,
}

var documentTypeMultipliers = map[DocumentType]float64{
	DocumentEssay:             0.8,
	DocumentScientificArticle: 1.1,
	DocumentThesis:            1.2,
	DocumentTechnicalReport:   0.9,
	DocumentCoursework:        0.9,
	DocumentCapstoneProject:   1.1,
	DocumentOther:             1.0,
}

// Context carries the submission attributes that modulate raw dimension
// scores. Unknown roles and document types are neutral.
type Context struct {
	Role         Role         `json:"role"`
	DocumentType DocumentType `json:"document_type"`
}

// RoleMultiplier returns the risk multiplier for the role, 1.0 when the
// role is not in the table.
func (c Context) RoleMultiplier() float64 {
	if m, ok := roleMultipliers[c.Role]; ok {
		return m
	}
	return 1.0
}

// DocumentTypeMultiplier returns the risk multiplier for the document
// type, 1.0 when the type is not in the table.
func (c Context) DocumentTypeMultiplier() float64 {
	if m, ok := documentTypeMultipliers[c.DocumentType]; ok {
		return m
	}
	return 1.0
}

// Adjust applies both context multipliers to every dimension score and
// caps the result at 1.0. The input map is not modified.
func (c Context) Adjust(scores DimensionScores) DimensionScores {
	factor := c.RoleMultiplier() * c.DocumentTypeMultiplier()
	adjusted := make(DimensionScores, len(scores))
	for dim, score := range scores {
		v := score * factor
		if v > 1.0 {
			v = 1.0
		}
		adjusted[dim] = v
	}
	return adjusted
}
