package config

import (
	"github.com/spf13/viper"
)

// setDefaults registers the default value for every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8700)

	v.SetDefault("interpreter.timeout", "20m")
	v.SetDefault("interpreter.max_output_bytes", 1<<20)
	v.SetDefault("interpreter.seed_file", "")
	v.SetDefault("interpreter.watch_seed", false)

	v.SetDefault("policy.allowed_functions", []string{"create", "save", "search", "CodeSkill"})
	v.SetDefault("policy.allowed_methods", []string{".show", ".test", ".run"})

	v.SetDefault("sessions.idle_timeout", "30m")
	v.SetDefault("sessions.max_sessions", 0)

	v.SetDefault("storage.path", "")
	v.SetDefault("storage.retention.enabled", true)
	v.SetDefault("storage.retention.schedule", "0 3 * * *")
	v.SetDefault("storage.retention.max_age", "720h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("log.file", "")
}
