// Package clock provides a tiny time abstraction.
//
// Code that stamps records (delivery logs, events) depends on Clocker rather
// than calling time.Now directly, so tests can pin the instant with Fixed.
package clock
