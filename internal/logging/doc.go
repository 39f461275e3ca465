// Package logging wires log/slog with the console and JSON handlers used by
// every dcmsort component. Loggers are constructed per run and passed down
// explicitly; there is no process-wide logging singleton.
package logging
