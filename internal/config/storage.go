package config

const (
	FileBackend     = "file"
	PostgresBackend = "postgres"
	MemoryBackend   = "memory"
)

type StorageConfig struct {
	BackendName string `yaml:"backend"`
	DirName     string `yaml:"dir"`
}

func (s *StorageConfig) Backend() string {
	if s.BackendName == "" {
		return FileBackend
	}
	return s.BackendName
}

func (s *StorageConfig) Dir() string {
	if s.DirName == "" {
		return "data"
	}
	return s.DirName
}
