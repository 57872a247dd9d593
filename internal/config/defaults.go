package config

import (
	"github.com/aleksaelezovic/factstore/pkg/sparql/tripleterm"
	"github.com/spf13/viper"
)

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	// Storage defaults: in-memory, nothing on disk
	v.SetDefault("storage.in_memory", true)
	v.SetDefault("storage.path", "factstore-data")
	v.SetDefault("storage.sync_writes", false)
	v.SetDefault("storage.mem_table_size", 0) // badger default

	v.SetDefault("transform.max_iterations", tripleterm.DefaultMaxIterations)

	v.SetDefault("results.pretty", false)
	v.SetDefault("results.indent", 2)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}
