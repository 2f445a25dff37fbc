package output

// QueryInfo describes one query of the graph and its selection outcome.
type QueryInfo struct {
	Name     string   `json:"name"`
	Included bool     `json:"included"`
	Reason   string   `json:"reason"`
	Function string   `json:"function,omitempty"`
	Fixtures []string `json:"fixtures,omitempty"`
}

// ListSummary counts the queries of a list.
type ListSummary struct {
	Total    int `json:"total"`
	Included int `json:"included"`
	Excluded int `json:"excluded"`
}

// ListOutput is the JSON output of the list command.
type ListOutput struct {
	Queries []QueryInfo `json:"queries"`
	Summary ListSummary `json:"summary"`
}

// FixtureInfo describes one fixture CTE.
type FixtureInfo struct {
	Table string `json:"table"`
	Name  string `json:"name"`
}

// RenderOutput is the JSON output of the render command.
type RenderOutput struct {
	Query    string        `json:"query"`
	Included bool          `json:"included"`
	Reason   string        `json:"reason"`
	Function string        `json:"function,omitempty"`
	SQL      string        `json:"sql"`
	Fixtures []FixtureInfo `json:"fixtures"`
}

// DAGNode is one query in the dependency graph.
type DAGNode struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

// DAGLevel groups queries at the same dependency depth.
type DAGLevel struct {
	Level   int       `json:"level"`
	Queries []DAGNode `json:"queries"`
}

// DAGOutput is the JSON output of the dag command.
type DAGOutput struct {
	Levels       []DAGLevel `json:"levels"`
	TotalQueries int        `json:"total_queries"`
	TotalEdges   int        `json:"total_edges"`
}

// GenerateOutput is the JSON output of the generate command.
type GenerateOutput struct {
	RunID     string `json:"run_id"`
	Path      string `json:"path"`
	Target    string `json:"target"`
	Tests     int    `json:"tests"`
	Excluded  int    `json:"excluded"`
	DryRun    bool   `json:"dry_run"`
	Unchanged bool   `json:"unchanged"`
	// Content holds the artifact of a dry run.
	Content string `json:"content,omitempty"`
}
