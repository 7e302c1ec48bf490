// Package server holds the configuration of the HTTP server started by the serve command.
package server
