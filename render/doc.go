// Package render turns a reconstructed value.Value into the plain-text
// form a front end (CLI or DAP) shows a user, including the three
// sentinel strings spec.md's error-handling design names for values the
// engine could not fully resolve.
package render
