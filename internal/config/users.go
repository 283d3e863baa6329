package config

type UserEntry struct {
	UserName string `yaml:"name"`
	Pswd     string `yaml:"password"`
}

func (u UserEntry) Name() string {
	return u.UserName
}

func (u UserEntry) Password() string {
	return u.Pswd
}

// UsersConfig is the static credential table. It is a fixed lookup
// baked into configuration, not an account system.
type UsersConfig struct {
	Entries []UserEntry `yaml:"entries"`
}

func (s *UsersConfig) Users() []UserEntry {
	return s.Entries
}
