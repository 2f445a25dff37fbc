// Package fixture rewrites a query so that every table it reads is replaced
// by a one-row inline CTE, letting the query run without any real data.
package fixture

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultName is used for a reference that yields no usable name.
	DefaultName = "table_data"
	// DefaultHashWidth is the number of hex digits of the collision suffix.
	DefaultHashWidth = 4
)

// Options tunes Rewrite.
type Options struct {
	// HashWidth is the initial length of the collision suffix. Zero means
	// DefaultHashWidth.
	HashWidth int
}

// Fixture maps one table reference to the CTE that stands in for it.
type Fixture struct {
	Reference string
	Name      string
}

// Clause renders the CTE definition of the fixture.
func (f Fixture) Clause() string {
	return f.Name + " AS (SELECT 1 AS id, 'dummy' AS name)"
}

// Result is a rewritten query.
type Result struct {
	SQL      string
	Fixtures []Fixture
}

// Mapping returns reference -> fixture name.
func (r Result) Mapping() map[string]string {
	m := make(map[string]string, len(r.Fixtures))
	for _, f := range r.Fixtures {
		m[f.Reference] = f.Name
	}
	return m
}

// CandidateName derives a CTE name from a table reference. Dashes become
// underscores; for project.dataset.table the dataset and table are kept,
// for dataset.table both parts are kept and a bare name is used as is.
func CandidateName(ref string) string {
	if ref == "" {
		return DefaultName
	}
	parts := strings.Split(strings.ReplaceAll(ref, "-", "_"), ".")
	switch {
	case len(parts) >= 3:
		return parts[1] + "_" + parts[2]
	case len(parts) == 2:
		return parts[0] + "_" + parts[1]
	default:
		return parts[0]
	}
}

// Rewrite replaces each backtick-quoted reference in sql with a fixture name
// and prepends the fixture CTEs. refs are processed in the given order, which
// decides which of two colliding references keeps the plain name.
func Rewrite(sql string, refs []string, opts Options) Result {
	width := opts.HashWidth
	if width <= 0 {
		width = DefaultHashWidth
	}

	taken := make(map[string]struct{}, len(refs))
	fixtures := make([]Fixture, 0, len(refs))
	rewritten := sql
	for _, ref := range refs {
		name := uniqueName(CandidateName(ref), ref, width, taken)
		taken[name] = struct{}{}
		fixtures = append(fixtures, Fixture{Reference: ref, Name: name})
		rewritten = strings.ReplaceAll(rewritten, "`"+ref+"`", name)
	}

	if len(fixtures) == 0 {
		return Result{SQL: rewritten}
	}
	return Result{SQL: assemble(rewritten, fixtures), Fixtures: fixtures}
}

// uniqueName suffixes candidate with a prefix of the reference's MD5 digest
// when it is taken, widening the prefix two digits at a time until the name
// is free.
func uniqueName(candidate, ref string, width int, taken map[string]struct{}) string {
	free := func(name string) bool {
		_, clash := taken[name]
		return !clash
	}
	if free(candidate) {
		return candidate
	}
	sum := md5.Sum([]byte(ref))
	digest := hex.EncodeToString(sum[:])
	for w := width; ; w += 2 {
		if w > len(digest) {
			w = len(digest)
		}
		if name := candidate + "_" + digest[:w]; free(name) {
			return name
		}
		if w == len(digest) {
			break
		}
	}
	for n := 1; ; n++ {
		if name := candidate + "_" + digest + "_" + strconv.Itoa(n); free(name) {
			return name
		}
	}
}

var (
	withHeader = regexp.MustCompile(`(?i)^WITH\s+(RECURSIVE\s+)?`)
	asKeyword  = regexp.MustCompile(`(?i)^AS[\s(]`)
)

// HasWithClause reports whether sql opens with a WITH keyword, ignoring
// leading comments.
func HasWithClause(sql string) bool {
	trimmed := strings.TrimSpace(sql)
	return withHeader.MatchString(trimmed[leadingComments(trimmed):])
}

// leadingComments returns the length of the whitespace and comments that
// precede the first token of sql. An unterminated comment runs to the end.
func leadingComments(sql string) int {
	i := 0
	for i < len(sql) {
		switch {
		case strings.ContainsRune(" \t\r\n\f", rune(sql[i])):
			i++
		case strings.HasPrefix(sql[i:], "--"), sql[i] == '#':
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				return len(sql)
			}
			i += end + 1
		case strings.HasPrefix(sql[i:], "/*"):
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				return len(sql)
			}
			i += end + 4
		default:
			return i
		}
	}
	return i
}

// assemble places the fixture CTEs in front of sql under a single WITH.
// Comments ahead of an existing WITH move below the fixture list. A WITH
// behind an opening parenthesis belongs to a nested query and is left alone.
func assemble(sql string, fixtures []Fixture) string {
	clauses := make([]string, len(fixtures))
	for i, f := range fixtures {
		clauses[i] = f.Clause()
	}
	prefix := strings.Join(clauses, ",\n")

	trimmed := strings.TrimSpace(sql)
	n := leadingComments(trimmed)
	body := trimmed[n:]
	loc := withHeader.FindStringSubmatchIndex(body)
	if loc == nil {
		return "WITH\n" + prefix + "\n" + sql
	}

	header, rest := "WITH", body[loc[1]:]
	if loc[2] >= 0 {
		if asKeyword.MatchString(rest) {
			// "WITH recursive AS (...)": a CTE named recursive.
			rest = body[loc[2]:]
		} else {
			header += " " + strings.ToUpper(strings.TrimSpace(body[loc[2]:loc[3]]))
		}
	}
	if n > 0 {
		rest = strings.TrimSpace(trimmed[:n]) + "\n" + rest
	}
	return header + "\n" + prefix + ",\n" + rest
}
