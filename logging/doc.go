// Package logging builds the structured slog logger shared by the application
// and the configuration engine. Output is JSON by default, with a text handler
// available for local development.
package logging
