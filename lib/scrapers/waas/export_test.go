package waas

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func str(s string) *string {
	return &s
}

func TestExportCompanyJobMapping(t *testing.T) {
	company := Company{
		Jobs: []Job{
			{Title: str("Engineer")},
			{Title: str("Designer")},
		},
	}

	export := ExportCompany(company)

	expected := CompanyExport{
		Name:     "",
		Website:  "",
		Founders: []Founder{},
		Jobs: []JobExport{
			{Name: "Engineer"},
			{Name: "Designer"},
		},
	}
	diff := cmp.Diff(expected, export)
	require.Empty(t, diff)
}

func TestExportCompanyDefaults(t *testing.T) {
	export := ExportCompany(Company{})

	require.Equal(t, "", export.Name)
	require.Equal(t, "", export.Website)
	require.NotNil(t, export.Founders)
	require.Empty(t, export.Founders)
	require.Nil(t, export.TeamSize)
	require.Nil(t, export.Industry)
	require.Nil(t, export.WebsiteDisplay)
	require.Nil(t, export.Country)
	require.Empty(t, export.Jobs)
}

func TestExportCompanyPassthrough(t *testing.T) {
	teamSize := 12
	company := Company{
		Name:           str("Initech"),
		Website:        str("https://initech.example"),
		WebsiteDisplay: str("initech.example"),
		TeamSize:       &teamSize,
		Industry:       str("B2B"),
		Country:        str("US"),
		Founders: []Founder{
			{FullName: str("Peter Gibbons")},
		},
		Jobs: []Job{
			{
				Title:             str("Backend Engineer"),
				PrettyExperience:  str("3+ years"),
				PrettyJobType:     str("Full-time"),
				PrettyRole:        str("Engineering"),
				PrettySalaryRange: str("$100K - $150K"),
			},
		},
	}

	export := ExportCompany(company)

	require.Equal(t, "Initech", export.Name)
	require.Equal(t, "https://initech.example", export.Website)
	require.Equal(t, 12, *export.TeamSize)
	require.Equal(t, "B2B", *export.Industry)
	require.Equal(t, "initech.example", *export.WebsiteDisplay)
	require.Equal(t, "US", *export.Country)
	require.Len(t, export.Founders, 1)

	require.Len(t, export.Jobs, 1)
	job := export.Jobs[0]
	require.Equal(t, "Backend Engineer", job.Name)
	require.Equal(t, "3+ years", *job.Experience)
	require.Equal(t, "Full-time", *job.Type)
	require.Equal(t, "Engineering", *job.Role)
	require.Equal(t, "$100K - $150K", *job.SalaryRange)
}

func TestExportPreservesOrder(t *testing.T) {
	companies := []Company{
		{Name: str("first")},
		{Name: str("second")},
		{Name: str("third")},
	}

	exports := Export(companies)

	require.Len(t, exports, 3)
	require.Equal(t, "first", exports[0].Name)
	require.Equal(t, "second", exports[1].Name)
	require.Equal(t, "third", exports[2].Name)
}
