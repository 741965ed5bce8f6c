// Package vtable is a framework for implementing SQLite virtual tables whose
// rows are produced by code rather than storage. It wraps the low-level
// modernc.org/sqlite/vtab callback surface with typed values, a query-plan
// negotiation helper and a per-table plan registry, so a table implementation
// only has to classify constraints, narrow bounds and walk rows.
//
// The flow per query: SQLite compiles a statement and calls BestIndex on the
// table. The table accepts the constraints it can serve through a PlanBuilder,
// which records a FilterPlan in the table's registry and hands SQLite an
// opaque plan id. At execution SQLite opens a cursor and calls Filter with the
// plan id plus the concrete argument values; the cursor resolves the plan,
// narrows its bounds and produces rows via Next/Eof/Column/Rowid until done.
package vtable
