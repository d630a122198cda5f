// Package logger wraps zap for the packer tooling:
//   - a global sugared logger writing console-encoded lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and runtime level changes for the --log-level flag,
//   - leveled convenience functions (Infof, WarnKV, etc.).
//
// Services take a context and pull the logger out of it, so a name set once
// at the entry point (for example "portable-packer") tags every line below it.
package logger
