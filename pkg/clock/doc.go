// Package clock provides a tiny time abstraction.
//
// Code that compares against wall-clock time (TOTP step windows, challenge
// expiry) depends on the Clock interface instead of calling time.Now directly,
// so tests can pin the time with Manual.
package clock
