// Package naming turns query names into test function identifiers and keeps
// those identifiers unique across one generated artifact.
package naming

import (
	"regexp"
	"strconv"
	"strings"
)

// TestPrefix is prepended to every sanitized query name.
const TestPrefix = "test_"

var invalidIdentChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Sanitize converts a (usually dot-qualified) table name into a lowercase
// identifier. Only the last dot-separated segment is kept.
func Sanitize(name string) string {
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	result := invalidIdentChars.ReplaceAllString(name, "_")
	if result != "" && result[0] >= '0' && result[0] <= '9' {
		result = "_" + result
	}
	return strings.ToLower(result)
}

// BaseName returns the unsuffixed test function name for a query.
func BaseName(queryName string) string {
	return TestPrefix + Sanitize(queryName)
}

// Allocator hands out function names that are unique for its lifetime.
// The first request for a base name returns it unchanged; later requests
// append _1, _2, ... . Names already handed out are never reused, even when a
// different query's base name collides with an earlier suffixed name.
type Allocator struct {
	counters map[string]int
	used     map[string]struct{}
}

// NewAllocator creates an empty allocator scoped to one run.
func NewAllocator() *Allocator {
	return &Allocator{
		counters: make(map[string]int),
		used:     make(map[string]struct{}),
	}
}

// Allocate returns a unique function name derived from base.
func (a *Allocator) Allocate(base string) string {
	if _, seen := a.counters[base]; !seen {
		a.counters[base] = 0
		if _, taken := a.used[base]; !taken {
			a.used[base] = struct{}{}
			return base
		}
	}
	for {
		a.counters[base]++
		name := base + "_" + strconv.Itoa(a.counters[base])
		if _, taken := a.used[name]; !taken {
			a.used[name] = struct{}{}
			return name
		}
	}
}

// Len reports how many names have been handed out.
func (a *Allocator) Len() int {
	return len(a.used)
}
