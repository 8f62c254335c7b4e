// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing pipeline states and images. These helpers are
// not intended for production usage.
package testutil
