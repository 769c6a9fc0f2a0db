// Package middleware holds the Gin middleware applied by the status server.
package middleware
