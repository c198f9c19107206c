// Package util holds small helpers shared across packages: size strings
// from config and optional-value pointers.
package util
