package patentscope

import (
	"fmt"
	"strings"
)

// formulaAlphabet is the set of characters (besides spaces) a molecular
// formula may consist of. Note that this is a character test, not a
// chemistry test: "C1=CC=CC=C1" is drawn entirely from this set and so
// classifies as a formula even though it reads like SMILES.
const formulaAlphabet = "0123456789CHONPS()[]+-="

// Classify sorts a raw molecule input into formula, SMILES, or name.
func Classify(rawInput string) InputKind {
	stripped := strings.ReplaceAll(strings.TrimSpace(rawInput), " ", "")

	if stripped != "" {
		isFormula := true
		for _, c := range stripped {
			if !strings.ContainsRune(formulaAlphabet, c) {
				isFormula = false
				break
			}
		}
		if isFormula {
			return KindFormula
		}
	}

	if strings.ContainsAny(stripped, `@/\`) {
		return KindSmiles
	}
	return KindName
}

// BuildQuery renders the portal query string for a spec. Formula and
// SMILES inputs become a quoted exact match against the english
// abstract field; names search all fields unquoted. Country clauses
// always precede the date clause. This never fails: sanitizing
// dangerous input is the API boundary's concern, not the query
// builder's.
func BuildQuery(spec SearchSpec) string {
	input := strings.TrimSpace(spec.RawInput)

	var query string
	switch spec.Kind {
	case KindFormula, KindSmiles:
		query = fmt.Sprintf(`%s:"%s"`, FieldEnglishAbstract, input)
	default:
		query = fmt.Sprintf(`%s:(%s)`, FieldEnglishAll, input)
	}

	if len(spec.Countries) == 1 {
		query += " AND PC:" + spec.Countries[0]
	} else if len(spec.Countries) > 1 {
		query += " AND PC:(" + strings.Join(spec.Countries, " OR ") + ")"
	}

	if spec.DateStart != "" {
		end := spec.DateEnd
		if end == "" {
			end = "*"
		}
		query += fmt.Sprintf(" AND PD:[%s TO %s]", spec.DateStart, end)
	}

	return query
}

// NewSearchSpec classifies the input and fills crawl bounds with the
// portal defaults.
func NewSearchSpec(rawInput string, pageSize, maxResults int) SearchSpec {
	if pageSize <= 0 {
		pageSize = 10
	}
	if maxResults <= 0 {
		maxResults = pageSize
	}
	return SearchSpec{
		RawInput:   strings.TrimSpace(rawInput),
		Kind:       Classify(rawInput),
		PageSize:   pageSize,
		MaxResults: maxResults,
	}
}
