package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var sampleRows = []Row{
	{Name: "Bob", Website: "winfix.live", Username: "bob", Referrals: 7},
	{Name: "Eve", Website: "ve567.live", Username: "eve", Referrals: 4},
	{Name: " Padded ", Website: "ve777.club", Username: "padded", Referrals: 1},
}

func TestWeeklyReport(t *testing.T) {
	out, err := Weekly(3, time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC), sampleRows)

	assert.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestMonthlyReport(t *testing.T) {
	out, err := Monthly("June 2023", time.Now(), sampleRows)

	assert.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestReportWithNoRows(t *testing.T) {
	out, err := Weekly(1, time.Now(), nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFilenames(t *testing.T) {
	generatedAt := time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "week_3_winners_2023-06-30.pdf", WeeklyFilename(3, generatedAt))
	assert.Equal(t, "monthly_winners_June_2023.pdf", MonthlyFilename("June 2023"))
}
