// Package lineage finds the tables a query reads from.
//
// SQL is treated as text: a table reference is any backtick-quoted span, so
// `project.dataset.table`, `dataset.table` and `table` are all references.
// No parsing or validation takes place.
//
// # Basic Usage
//
//	refs := lineage.ExtractReferences("SELECT * FROM `p.d.orders` JOIN `p.d.users` USING (id)")
//	// refs == []string{"p.d.orders", "p.d.users"}
//
// Resolve applies the same extraction to every query of a graph and links
// references that name another query of that graph, which is what the dag
// command prints.
package lineage
