// Package server exposes a live scene over HTTP for inspection.
//
// The server is read-mostly: clients browse the current scope, run the
// spatial queries, pull nets, signal order and a DOT rendering, and may
// navigate between scopes or remove an element. Every handler runs under one
// mutex, so a [Server] may share its scene with a single other writer only
// through [Server.Do].
//
// Routes:
//
//	GET    /scope                       current scope with children and connections
//	POST   /scope/enter/{id}            step into a composite child
//	POST   /scope/exit                  step up one level
//	POST   /scope/root                  return to the global root
//	GET    /scope/elements/{id}         one child of the current scope
//	DELETE /scope/elements/{id}         remove a child
//	GET    /scope/elements/{id}/hit     gate of the element under ?x=&y=
//	GET    /scope/hit                   children containing ?x=&y=
//	GET    /scope/rect                  children with a corner in ?x=&y=&w=&h=
//	GET    /scope/gates                 gates anchored under ?x=&y=
//	GET    /scope/nets                  connected nets of the scope
//	GET    /scope/order                 children in signal order
//	GET    /scope/dot                   Graphviz DOT of the scope (?detailed=1)
//	GET    /version                     build information
//	GET    /metrics                     Prometheus metrics, when configured
//
// Errors are JSON objects carrying the error code and a user message. The
// code decides the status: NOT_FOUND is 404, INVALID_TARGET,
// DIRECTION_MISMATCH and FEEDBACK_LOOP are 409, bad parameters are 400.
package server
