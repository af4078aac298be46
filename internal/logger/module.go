package logger

import "go.uber.org/fx"

// Module provides the application logger. Pair it with
// fx.WithLogger(NewEventLogger) at the root of the graph.
var Module = fx.Module("logger", fx.Provide(New))
