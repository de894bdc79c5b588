/*
Package log provides structured logging shared across the deployer.

It wraps zerolog behind a single global Logger, initialized once via
Init, with helpers to derive child loggers scoped to an environment or
a specific handler invocation. Secrets must never reach a logger
directly; callers pass values through pkg/secret's redacted String()
form rather than the raw bytes.
*/
package log
