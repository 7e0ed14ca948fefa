package judges

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const panelPage = `<html><body>
<table><tr><td>ISU</td></tr></table>
<div><h2>Men Short Program</h2></div>
<table>
  <tr><th>Function</th><th>Name</th><th>Nat.</th></tr>
  <tr><td>Referee</td><td>Mr. John DOE</td><td>USA</td></tr>
  <tr><td>Judge No.1</td><td>Ms. Jane SMITH</td><td>CAN</td></tr>
  <tr><td></td><td> </td><td></td></tr>
  <tr><td>Judge No.2</td><td>Mr. Ivan PETROV</td><td>OAR</td></tr>
</table>
</body></html>`

func TestParseRoster(t *testing.T) {
	roster, err := ParseRoster(strings.NewReader(panelPage), "wc2018", "SEG001OF.htm")
	require.NoError(t, err)

	assert.Equal(t, "men short program", roster.Category)
	assert.Equal(t, []string{"Function", "Name", "Nation"}, roster.Columns)
	assert.False(t, roster.UnexpectedColumns())

	require.Len(t, roster.Judges, 3)
	assert.Equal(t, Judge{
		Competition: "wc2018",
		Function:    "Judge No.1",
		Name:        "Ms. Jane SMITH",
		Nation:      "CAN",
		Source:      "SEG001OF.htm",
		Category:    "men short program",
	}, roster.Judges[1])
}

func TestParseRosterUnexpectedColumns(t *testing.T) {
	page := `<body><h3>Ladies Free Skating</h3>
<table><tr><td>Function</td><td>Name</td><td>Nation</td><td>Club</td></tr>
<tr><td>Judge No.1</td><td>Ms. Jane SMITH</td><td>CAN</td><td>Toronto</td></tr></table></body>`

	roster, err := ParseRoster(strings.NewReader(page), "wc2018", "SEG002OF.htm")
	require.NoError(t, err)
	assert.True(t, roster.UnexpectedColumns())
	require.Len(t, roster.Judges, 1)
	assert.Equal(t, "CAN", roster.Judges[0].Nation)
}

func TestParseRosterErrors(t *testing.T) {
	_, err := ParseRoster(strings.NewReader(`<body><h2>Men Short Program</h2><table><tr><td>Name</td></tr></table></body>`), "c", "s")
	assert.ErrorIs(t, err, ErrNoRosterTable)

	_, err = ParseRoster(strings.NewReader(`<body><h2>Results</h2><table><tr><td>Function</td></tr></table></body>`), "c", "s")
	assert.ErrorIs(t, err, ErrNoCategory)
}
