// Package deps reports whether the external binaries facehugger shells out to
// are installed.
package deps
