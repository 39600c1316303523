// Package logx configures phonebook's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - A zero-value Logger that is safe to use as a no-op sink
//
// Components never reach for a global logger; they accept a logx.Logger and
// fall back to Nop() when none is injected.
package logx
