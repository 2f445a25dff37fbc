package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reason explains a classification.
type Reason string

// Exclusion reasons.
const (
	ReasonTrivialSelect       Reason = "trivial-select"
	ReasonTrivialSelectExcept Reason = "trivial-select-except"
	ReasonSimple              Reason = "simple"
)

// Complexity signals, in the order they are tested.
const (
	ReasonLength         Reason = "length"
	ReasonJoin           Reason = "join"
	ReasonGroupBy        Reason = "group-by"
	ReasonWith           Reason = "with"
	ReasonUnion          Reason = "union"
	ReasonCase           Reason = "case"
	ReasonMultipleSelect Reason = "multiple-select"
)

// complexLength is the normalized length, in characters, above which a query
// is complex regardless of its keywords.
const complexLength = 100

var (
	trivialSelect       = regexp.MustCompile("(?i)^(--.*\\s)*SELECT \\* FROM `[^`]+`\\s*$")
	trivialSelectExcept = regexp.MustCompile("(?i)^SELECT \\* EXCEPT\\([^)]+\\) FROM `[^`]+`\\s*$")
)

var keywordSignals = []struct {
	keyword string
	reason  Reason
}{
	{"JOIN", ReasonJoin},
	{"GROUP BY", ReasonGroupBy},
	{"WITH", ReasonWith},
	{"UNION", ReasonUnion},
	{"CASE", ReasonCase},
}

// Classification is the outcome of the selection predicate.
type Classification struct {
	Included bool
	Reason   Reason
}

// Normalize collapses every run of whitespace into a single space and trims
// the ends.
func Normalize(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

// Classify decides whether a query deserves a generated test. Plain
// pass-through selects are excluded; everything else is included only when it
// shows a complexity signal. Keyword checks are substring checks on the
// upper-cased text, so identifiers containing a keyword also count.
func Classify(sql string) Classification {
	normalized := Normalize(sql)

	if trivialSelect.MatchString(normalized) {
		return Classification{Reason: ReasonTrivialSelect}
	}
	if trivialSelectExcept.MatchString(normalized) {
		return Classification{Reason: ReasonTrivialSelectExcept}
	}

	if utf8.RuneCountInString(normalized) > complexLength {
		return Classification{Included: true, Reason: ReasonLength}
	}
	upper := cases.Upper(language.Und).String(normalized)
	for _, s := range keywordSignals {
		if strings.Contains(upper, s.keyword) {
			return Classification{Included: true, Reason: s.reason}
		}
	}
	if strings.Count(upper, "SELECT") > 1 {
		return Classification{Included: true, Reason: ReasonMultipleSelect}
	}
	return Classification{Reason: ReasonSimple}
}
