package config

// Config is the factstore configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Transform TransformConfig `mapstructure:"transform"`
	Results   ResultsConfig   `mapstructure:"results"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// StorageConfig selects and tunes the BadgerDB backend
type StorageConfig struct {
	InMemory     bool   `mapstructure:"in_memory"`
	Path         string `mapstructure:"path"`
	SyncWrites   bool   `mapstructure:"sync_writes"`
	MemTableSize int64  `mapstructure:"mem_table_size"`
}

// TransformConfig tunes the triple term transformer
type TransformConfig struct {
	MaxIterations int `mapstructure:"max_iterations"`
}

// ResultsConfig holds result encoder defaults
type ResultsConfig struct {
	Pretty bool `mapstructure:"pretty"`
	Indent int  `mapstructure:"indent"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures logging
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}
