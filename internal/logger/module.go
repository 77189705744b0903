package logger

import "go.uber.org/fx"

// Module provides the process-wide slog logger built from configuration.
var Module = fx.Provide(New)
