// Package internalcheck holds static checks over the module's own source.
//
// It contains only tests. They enforce that cgo stays confined to
// internal/bindings and that request or response payloads never reach a
// logger.
package internalcheck
