// Package models defines the registry records and the resolved address row.
package models
