package auth

// Service checks credentials against the static table from config.
// This is a fixed lookup, not an account system: users are never
// created, stored or expired at runtime.
type Service struct {
	users map[string]string
}

func New(entries map[string]string) *Service {
	users := make(map[string]string, len(entries))
	for name, pswd := range entries {
		users[name] = pswd
	}
	return &Service{users: users}
}

// Check reports whether the pair matches the table exactly.
func (s *Service) Check(username, password string) bool {
	pswd, ok := s.users[username]
	return ok && pswd == password
}
