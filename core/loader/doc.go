// Package loader registers the HTTP features of the serve command.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// Features are loaded in registration order. Disabled features are logged and
// skipped; the first Load error aborts LoadAll.
package loader
