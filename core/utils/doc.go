// Package utils provides common utility functions for gar-builder.
// It includes helpers to coerce raw registry attribute strings into typed values
// and to parse comma-separated configuration lists. WriteAtomic publishes a file
// only once its content has been fully written.
package utils
