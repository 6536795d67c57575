package kernel

import "strings"

type VacancyTitle string

type PersonName string

// Location is free text such as "Quito, Pichincha, Ecuador"
type Location string

// PrimaryToken returns the lowercased text before the first comma
func (l Location) PrimaryToken() string {
	s := string(l)
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Address is a worker's free-text address
type Address string

// Contains reports whether the address contains the token, ignoring case
func (a Address) Contains(token string) bool {
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(string(a)), strings.ToLower(token))
}
