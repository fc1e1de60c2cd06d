package patentscope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		input    string
		expected InputKind
	}{
		{"C6H12O6", KindFormula},
		{"CH3 COOH", KindFormula},
		{"H2O", KindFormula},
		// drawn entirely from the formula alphabet, so this SMILES
		// string classifies as a formula by the character rule
		{"C1=CC=CC=C1", KindFormula},
		{"CC(=O)Oc1ccccc1C(=O)O", KindSmiles},
		{`C[C@H](N)C(=O)O`, KindSmiles},
		{"glucose", KindName},
		{"acetylsalicylic acid", KindName},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Classify(test.input), "input: %s", test.input)
	}
}

func TestBuildQueryFormula(t *testing.T) {
	spec := NewSearchSpec("C6H12O6", 10, 10)
	require.Equal(t, KindFormula, spec.Kind)
	require.Equal(t, `EN_AB:"C6H12O6"`, BuildQuery(spec))
}

func TestBuildQueryName(t *testing.T) {
	spec := NewSearchSpec("glucose", 10, 10)
	require.Equal(t, `EN_ALL:(glucose)`, BuildQuery(spec))
}

func TestBuildQueryFiltersFixedOrder(t *testing.T) {
	spec := NewSearchSpec("glucose", 10, 10)
	spec.Countries = []string{"US"}
	spec.DateStart = "2020-01-01"
	spec.DateEnd = "2023-12-31"

	require.Equal(
		t,
		`EN_ALL:(glucose) AND PC:US AND PD:[2020-01-01 TO 2023-12-31]`,
		BuildQuery(spec),
	)
}

func TestBuildQueryMultipleCountriesOpenDate(t *testing.T) {
	spec := NewSearchSpec("insulin", 10, 10)
	spec.Countries = []string{"US", "EP", "WO"}
	spec.DateStart = "2019-06-01"

	require.Equal(
		t,
		`EN_ALL:(insulin) AND PC:(US OR EP OR WO) AND PD:[2019-06-01 TO *]`,
		BuildQuery(spec),
	)
}
