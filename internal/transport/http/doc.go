// Package http contains the chi handlers of the snapshot viewer API. The
// handlers are a thin presentation layer: they run the pipeline on an
// uploaded snapshot and serve the resulting tables read-only, as JSON or as
// the bulk Excel report.
package http
