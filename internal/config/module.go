package config

import "go.uber.org/fx"

// Module loads Config once per fx graph from flags, environment and ENV_FILE.
var Module = fx.Module("config", fx.Provide(Load))
