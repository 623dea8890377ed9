// Package integration provides end-to-end tests for the extrepo API server.
// Repositories are served by an in-process TLS host and the server runs with
// file storage in a temporary directory.
package integration
