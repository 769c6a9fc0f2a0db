// Package endpoint provides the Gin handlers served by the status server.
package endpoint
