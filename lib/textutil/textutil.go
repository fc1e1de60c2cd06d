package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var innerWhitespace = regexp.MustCompile(`\s+`)

// NormalizeSpace trims a string and collapses any run of inner
// whitespace into a single space.
func NormalizeSpace(s string) string {
	s = strings.Trim(s, " \n\t\r")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// SplitList splits a semicolon-delimited value list, normalizing each
// entry and dropping entries that are empty after trimming.
func SplitList(s string) []string {
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = NormalizeSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

var integerPattern = regexp.MustCompile(`\d[\d,]*`)

// Integers returns every integer substring in s, accepting thousands
// separators ("1,024" parses as 1024). Substrings that overflow int are
// skipped.
func Integers(s string) []int {
	matches := integerPattern.FindAllString(s, -1)
	var out []int
	for _, m := range matches {
		n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// MaxInteger returns the largest integer substring in s, or false when
// s contains none.
func MaxInteger(s string) (int, bool) {
	nums := Integers(s)
	if len(nums) == 0 {
		return 0, false
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return max, true
}

// ContainsKeyword reports whether the lowercased string contains any of
// the given lowercase keywords.
func ContainsKeyword(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
