// Package view implements the data-view pipeline behind a searchable,
// filterable, sortable, paginated table.
//
// The package has no UI dependencies. A host (the web server, the terminal
// viewer, or a test) owns a [Table] and supplies a [Renderer] that turns each
// [Frame] into visible output.
//
// # Pipeline
//
// Every render runs the same stages in order:
//
//  1. [Matcher] keeps records that pass the global search and every column filter (AND).
//  2. [Sort] orders the survivors by one column, stable, comparing lowercased text.
//  3. [Cache] memoizes the result of 1+2 until search, filters, sort or data change.
//  4. [Paginate] computes page bounds and the visible slice.
//
// [Table.Update] is the single entry point that runs the pipeline and hands
// the result to the renderer. It also clamps the current page, so the page is
// always within [1, PageCount] after any mutation.
//
// # Sorting quirk
//
// Values are compared as lowercased strings, never as numbers, so "10" sorts
// before "9". Hosts that need numeric order must pad or pre-format values.
//
// # Concurrency
//
// A Table is meant to be driven from one goroutine, the way a UI event loop
// drives a widget. Hosts that share one across goroutines must serialise
// access themselves.
package view
