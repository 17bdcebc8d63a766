package types

// Contact holds the first email and phone found in a resume.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ParsedResume is the four-bucket view of free resume text.
type ParsedResume struct {
	Contact    Contact  `json:"contact"`
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Skills     []string `json:"skills"`
}

// EmptyParsedResume returns the four empty buckets.
func EmptyParsedResume() ParsedResume {
	return ParsedResume{
		Education:  []string{},
		Experience: []string{},
		Skills:     []string{},
	}
}

// Clone returns a deep copy.
func (p ParsedResume) Clone() ParsedResume {
	return ParsedResume{
		Contact:    p.Contact,
		Education:  append([]string{}, p.Education...),
		Experience: append([]string{}, p.Experience...),
		Skills:     append([]string{}, p.Skills...),
	}
}

// SkillsResult is the fixed-vocabulary skill match grouped by category.
type SkillsResult struct {
	SkillsByCategory map[string][]string `json:"skills_by_category"`
	TotalSkillsFound int                 `json:"total_skills_found"`
}
