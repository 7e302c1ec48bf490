// Package middleware groups the Fiber middleware of the serve command.
//
// # Components
//
//   - rayid: assigns every request an X-Ray-ID (reusing a valid incoming one) and
//     stores it in Locals so request logs can carry it.
//   - auth: rejects requests without the configured X-API-Key, except for the
//     listed public paths such as /health.
package middleware
