// Package loader reads the query graph document that drives test generation.
//
// The document is a JSON object whose "tables" member maps a logical query
// name to an object carrying at least a "sql" string. Member order is
// significant: generated tests follow the order in which queries appear.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/francoispqt/gojay"
)

// ErrMissingTables is returned when the document has no "tables" member.
var ErrMissingTables = errors.New(`missing "tables" field`)

// ErrInvalidJSON is returned when the document is not well-formed JSON.
var ErrInvalidJSON = errors.New("invalid JSON document")

// LoadError wraps any failure to read or decode the graph document.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load query graph: %v", e.Err)
	}
	return fmt.Sprintf("load query graph %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Query is one named entry of the graph.
type Query struct {
	Name string
	SQL  string
}

// Graph is the ordered, read-only set of queries loaded from one document.
type Graph struct {
	queries []Query
	index   map[string]int
}

// NewGraph builds a graph from queries already in memory. Later duplicates
// replace the definition of earlier ones, as in a decoded document.
func NewGraph(queries ...Query) *Graph {
	g := &Graph{index: make(map[string]int, len(queries))}
	for _, q := range queries {
		g.add(q.Name, q.SQL)
	}
	return g
}

func (g *Graph) add(name, sql string) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	if i, ok := g.index[name]; ok {
		g.queries[i].SQL = sql
		return
	}
	g.index[name] = len(g.queries)
	g.queries = append(g.queries, Query{Name: name, SQL: sql})
}

// Queries returns the queries in document order.
func (g *Graph) Queries() []Query {
	return g.queries
}

// Get looks up a query by name.
func (g *Graph) Get(name string) (Query, bool) {
	i, ok := g.index[name]
	if !ok {
		return Query{}, false
	}
	return g.queries[i], true
}

// Len returns the number of queries in the graph.
func (g *Graph) Len() int {
	return len(g.queries)
}

// Load reads and decodes the graph document at path.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	g, err := Decode(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return g, nil
}

// Decode parses a graph document held in memory. The streaming decoder
// tolerates truncated or trailing input, so the whole document is checked
// for well-formedness first.
func Decode(data []byte) (*Graph, error) {
	if !json.Valid(data) {
		return nil, &LoadError{Err: ErrInvalidJSON}
	}
	doc := &document{}
	if err := gojay.UnmarshalJSONObject(data, doc); err != nil {
		return nil, &LoadError{Err: err}
	}
	// A null "tables" leaves the pointer unset, same as an absent member.
	if doc.tables == nil {
		return nil, &LoadError{Err: ErrMissingTables}
	}
	return (*Graph)(doc.tables), nil
}

// document decodes the top-level object; only "tables" is consumed.
type document struct {
	tables *tables
}

func (d *document) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	if key != "tables" {
		return nil
	}
	return dec.ObjectNull(&d.tables)
}

func (d *document) NKeys() int { return 0 }

// tables decodes the name -> definition map in member order. A repeated name
// keeps its first position and takes the last definition.
type tables Graph

func (t *tables) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	def := &definition{}
	if err := dec.Object(def); err != nil {
		return fmt.Errorf("table %q: %w", key, err)
	}
	(*Graph)(t).add(key, def.sql)
	return nil
}

func (t *tables) NKeys() int { return 0 }

// definition decodes a single query object; fields other than "sql" are skipped.
type definition struct {
	sql string
}

func (q *definition) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	if key != "sql" {
		return nil
	}
	return dec.String(&q.sql)
}

func (q *definition) NKeys() int { return 0 }
