// Package codegen renders test units into the source file of a target
// language using embedded text templates.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/leapstack-labs/workloadgen/internal/fixture"
	"golang.org/x/tools/imports"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Target is an output language.
type Target string

// Supported targets.
const (
	TargetRust Target = "rust"
	TargetGo   Target = "go"
)

// DefaultPackage is the package clause of generated Go files.
const DefaultPackage = "queries"

// Targets lists the supported target names.
func Targets() []string {
	return []string{string(TargetRust), string(TargetGo)}
}

// ParseTarget validates a target name. The empty string selects Rust.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(s)) {
	case TargetRust, "":
		return TargetRust, nil
	case TargetGo:
		return TargetGo, nil
	default:
		return "", fmt.Errorf("unsupported target %q (want one of %s)", s, strings.Join(Targets(), ", "))
	}
}

// Extension returns the file suffix of artifacts for the target.
func (t Target) Extension() string {
	if t == TargetGo {
		return "_test.go"
	}
	return ".rs"
}

// Unit is one generated test.
type Unit struct {
	Name     string // function name, unique within the artifact
	Query    string // name of the originating query
	SQL      string // rewritten SQL, unescaped
	Fixtures []fixture.Fixture
}

// Options configures a Generator.
type Options struct {
	Target Target
	// Package is the package clause of Go output.
	Package string
	// ExecutorImport, when set, makes Go output call CreateExecutor from that
	// package instead of a package-local createExecutor.
	ExecutorImport string
}

// Generator renders units for one target.
type Generator struct {
	opts Options
	tmpl *template.Template
}

var templateFuncs = template.FuncMap{
	"escape":   Escape,
	"goName":   GoName,
	"goString": goString,
}

// New parses the embedded templates.
func New(opts Options) (*Generator, error) {
	target, err := ParseTarget(string(opts.Target))
	if err != nil {
		return nil, err
	}
	opts.Target = target
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if !goIdent.MatchString(opts.Package) {
		return nil, fmt.Errorf("invalid go package name %q", opts.Package)
	}

	tmpl, err := template.New("codegen").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{opts: opts, tmpl: tmpl}, nil
}

// Target returns the generator's target.
func (g *Generator) Target() Target {
	return g.opts.Target
}

type fileData struct {
	Units          []Unit
	Package        string
	ExecutorImport string
	ExecutorName   string
	Constructor    string
}

// Render produces the complete artifact: the header followed by every unit in
// order, separated by blank lines.
func (g *Generator) Render(units []Unit) ([]byte, error) {
	data := fileData{
		Units:          units,
		Package:        g.opts.Package,
		ExecutorImport: g.opts.ExecutorImport,
		Constructor:    "createExecutor",
	}
	if g.opts.ExecutorImport != "" {
		data.ExecutorName = ImportName(g.opts.ExecutorImport)
		data.Constructor = data.ExecutorName + ".CreateExecutor"
	}

	var buf bytes.Buffer
	name := string(g.opts.Target) + ".tmpl"
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	if g.opts.Target != TargetGo {
		return buf.Bytes(), nil
	}

	formatted, err := imports.Process("", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("goimports: %w", err)
	}
	return formatted, nil
}

var (
	goIdent       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	majorVersion  = regexp.MustCompile(`^v[0-9]+$`)
	nonIdentChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// GoName turns a test function name into an exported Go test name by
// upper-casing its first letter.
func GoName(name string) string {
	if name == "" {
		return "Test"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// ImportName derives the name the executor package is imported under: the
// last element of the path, skipping a major version suffix, with characters
// that cannot appear in an identifier replaced.
func ImportName(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		if parent := path.Dir(importPath); parent != "." && parent != "/" {
			base = path.Base(parent)
		}
	}
	name := nonIdentChars.ReplaceAllString(base, "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "_" + name
	}
	return name
}

func goString(sql string) string {
	return strconv.Quote(normalizeNewlines(sql))
}
