// Package integration holds end-to-end tests that run the whole server
// against postgres and redis started in docker. Run with -tags integration_test.
package integration
