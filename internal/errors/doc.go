// Package errors provides structured, actionable errors for Sputnik.
//
// Every error carries a code (e.g. "E201") that maps to a registered
// template with a category, a short message and a longer explanation:
//
//	err := errors.New("E201").
//	    WithDetail(`no element matches selector "#login"`).
//	    WithSuggestion(`Add vdom.Div(vdom.ID("login")) to the page.`)
//
// Codes are grouped by range:
//
//	E1xx  configuration
//	E2xx  mounting and rendering
//	E3xx  protocol
//	E4xx  CLI and backends
//
// Format renders an error for a terminal, FormatJSON for tooling.
package errors
