// Package sanitizer prepares registration text for storage.
//
// All functions are idempotent and total: applying them twice gives the same
// result as applying them once, and no input makes them fail.
//
// Normalization includes:
//   - Text: trim surrounding whitespace and HTML-escape, without escaping twice
//   - Phones: strip separators, and rewrite international Ghana numbers to the local 0XXXXXXXXX form
package sanitizer
