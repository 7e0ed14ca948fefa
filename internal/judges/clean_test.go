package judges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/skate-protocols/internal/protocol"
)

func TestClean(t *testing.T) {
	raw := []Judge{
		{Competition: "wc2015", Function: "Judge No.1", Name: "Ms. Jane SMITH", Nation: "CAN", Category: "Men Short Program", Source: "SEG001OF.htm"},
		{Competition: "wc2016", Function: "Judge No.3", Name: "Ms. Jane SMITH", Nation: "ISU", Category: "Men Free Skating", Source: "SEG002OF.htm"},
		{Competition: "wc2016", Function: "Referee", Name: "Mr. John DOE", Nation: "USA", Category: "Men Free Skating", Source: "SEG002OF.htm"},
		{Competition: "wc2018", Function: "Judge No.2", Name: "Mr. Ivan PETROV", Nation: "OAR", Category: "Pairs Short Program", Source: "SEG005OF.htm"},
		{Competition: "wc2016", Function: "Judge No.4", Name: "van VEEN Wilhelmina", Nation: "NED", Category: "Ladies Qualifying Group A", Source: "SEG003OF.htm"},
		{Competition: "wc2016", Function: "Judge No.5", Name: "Mr. Tom LEE", Nation: "ISU", Category: "Men Free Skating", Source: "SEG002OF.htm"},
		{Competition: "wc2015", Function: "Judge No.6", Name: "Ms. Ann KIM", Nation: "KOR", Category: "Men Short Program", Source: "SEG001OF.htm"},
		{Competition: "wc2016", Function: "Judge No.7", Name: "Ms. Ann KIM", Nation: "USA", Category: "Men Free Skating", Source: "SEG002OF.htm"},
	}

	judges, warnings := Clean(raw)
	require.Len(t, judges, 6)

	byKey := make(map[string]Judge)
	for _, j := range judges {
		byKey[j.Competition+"/"+j.JudgeID] = j
	}

	first := byKey["wc2015/j1"]
	assert.Equal(t, "Jane SMITH", first.Name)
	assert.Equal(t, "F", first.Gender)
	assert.Equal(t, "Judge", first.Function)
	assert.Equal(t, "CAN", first.InferredNation)
	assert.False(t, first.NationApprox)
	assert.Equal(t, "men short program", first.Category)
	assert.Equal(t, "wc", first.CompType)
	assert.Equal(t, 2015, first.Year)
	assert.Equal(t, 2014, first.Season)
	assert.Equal(t, "men", first.Discipline)
	assert.Equal(t, "sp", first.Program)
	assert.False(t, first.Junior)
	assert.False(t, first.Team)

	filled := byKey["wc2016/j3"]
	assert.Equal(t, "Jane SMITH", filled.Name)
	assert.Equal(t, "ISU", filled.Nation)
	assert.Equal(t, "CAN", filled.InferredNation)
	assert.True(t, filled.NationApprox)
	assert.Equal(t, "lp", filled.Program)

	russian := byKey["wc2018/j2"]
	assert.Equal(t, "RUS", russian.Nation)
	assert.Equal(t, "M", russian.Gender)
	assert.Equal(t, "pair", russian.Discipline)

	unknown := byKey["wc2016/j5"]
	assert.Empty(t, unknown.InferredNation)
	assert.False(t, unknown.NationApprox)

	// two nations: keep each judge's own
	assert.Equal(t, "KOR", byKey["wc2015/j6"].InferredNation)
	assert.Equal(t, "USA", byKey["wc2016/j7"].InferredNation)
	assert.False(t, byKey["wc2016/j7"].NationApprox)

	require.Len(t, warnings, 1)
	assert.Equal(t, protocol.WarnNationApprox, warnings[0].Kind)
	assert.Equal(t, "wc2016", warnings[0].Competition)
}

func TestCleanUnknownCompetition(t *testing.T) {
	judges, warnings := Clean([]Judge{
		{Competition: "misc", Function: "Judge No.1", Name: "Ms. Jane SMITH", Nation: "CAN", Category: "Junior Men Short Program"},
	})
	require.Len(t, judges, 1)
	assert.Empty(t, judges[0].CompType)
	assert.True(t, judges[0].Junior)

	require.Len(t, warnings, 1)
	assert.Equal(t, protocol.WarnUnknownCompetition, warnings[0].Kind)
}

func TestFirstNameFirst(t *testing.T) {
	tests := map[string]string{
		"SMITH Jane":          "Jane SMITH",
		"DE LA CRUZ Maria":    "Maria DE LA CRUZ",
		"O'BRIEN Sean":        "Sean O'BRIEN",
		"Jane SMITH":          "Jane SMITH",
		"A B":                 "A B",
		"van VEEN Wilhelmina": "Wilhelmina VAN VEEN",
		"de LACROIX Pierre":   "Pierre DE LACROIX",
		"ÖZTÜRK Ayşe":         "Ayşe ÖZTÜRK",
	}
	for in, want := range tests {
		assert.Equal(t, want, firstNameFirst(in), in)
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Jane SMITH", cleanName("Mrs. SMITH Jane"))
	assert.Equal(t, "John A DOE", cleanName("Mr John A. DOE"))
	assert.Equal(t, "Ms", cleanName("Ms"))
}

func TestGender(t *testing.T) {
	assert.Equal(t, "M", gender("Mr. John DOE"))
	assert.Equal(t, "M", gender("Mr John DOE"))
	assert.Equal(t, "F", gender("Mrs. Jane DOE"))
	assert.Equal(t, "F", gender("Ms Jane DOE"))
	assert.Equal(t, "", gender("Jane DOE"))
}

func TestNormalizeNation(t *testing.T) {
	assert.Equal(t, "RUS", NormalizeNation("OAR"))
	assert.Equal(t, "RUS", NormalizeNation("ROC"))
	assert.Equal(t, "USA", NormalizeNation("USA"))
}
