// Package testsupport holds fixtures shared by package tests: temp-dir
// configs, an hf stub binary and manifest writers.
package testsupport
