// Package logger wraps zap for the facility binaries.
//
// A global sugared console logger is created at start-up; services carry a
// named copy of it in their context (ToContext/FromContext/WithName/WithKV)
// so that power and breach events are logged with the component that caused
// them.
package logger
