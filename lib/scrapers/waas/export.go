package waas

// CompanyExport is the reduced output shape, the only durable artifact of a
// run. Name and website always carry a string, the remaining company fields
// keep the absent state of their source.
type CompanyExport struct {
	Name           string      `json:"name"`
	Website        string      `json:"website"`
	TeamSize       *int        `json:"team_size,omitempty"`
	Founders       []Founder   `json:"founders"`
	Industry       *string     `json:"industry,omitempty"`
	WebsiteDisplay *string     `json:"website_display,omitempty"`
	Country        *string     `json:"country,omitempty"`
	Jobs           []JobExport `json:"jobs"`
}

type JobExport struct {
	Name        string  `json:"name"`
	Experience  *string `json:"experience,omitempty"`
	Type        *string `json:"type,omitempty"`
	Role        *string `json:"role,omitempty"`
	SalaryRange *string `json:"salary_range,omitempty"`
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportCompany projects one company record into the output shape, keeping
// the job list's order and length.
func ExportCompany(c Company) CompanyExport {
	jobs := make([]JobExport, len(c.Jobs))
	for i, j := range c.Jobs {
		jobs[i] = JobExport{
			Name:        orEmpty(j.Title),
			Experience:  j.PrettyExperience,
			Type:        j.PrettyJobType,
			Role:        j.PrettyRole,
			SalaryRange: j.PrettySalaryRange,
		}
	}

	founders := c.Founders
	if founders == nil {
		founders = []Founder{}
	}

	return CompanyExport{
		Name:           orEmpty(c.Name),
		Website:        orEmpty(c.Website),
		TeamSize:       c.TeamSize,
		Founders:       founders,
		Industry:       c.Industry,
		WebsiteDisplay: c.WebsiteDisplay,
		Country:        c.Country,
		Jobs:           jobs,
	}
}

// Export projects every company in order, one output record per input record.
func Export(companies []Company) []CompanyExport {
	out := make([]CompanyExport, len(companies))
	for i, c := range companies {
		out[i] = ExportCompany(c)
	}
	return out
}
