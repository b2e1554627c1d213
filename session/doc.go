// Package session holds per-project client defaults as an explicit settings
// object rather than ambient process-wide state.
//
// A Settings value is constructed once and passed to the code that needs it.
// ResetTo switches the session to another project, clearing every stored
// default; switching to the project already active is a no-op and preserves
// the defaults.
package session
