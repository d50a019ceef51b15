package config

const (
	defaultStorageProvider = "inmemory"
	defaultAPIListen       = ":8081"

	defaultClientAPITarget = "http://localhost:8081"

	defaultDiffMode = "shallow"

	defaultEventProvider = "nop"
	defaultEventTopic    = "creatormem.memory.events"
	defaultEventWorkers  = 2
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Memory: MemoryConfig{
			DiffMode: defaultDiffMode,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventProvider,
			Topic:    defaultEventTopic,
			Workers:  defaultEventWorkers,
		},
	}
}
