// Package osenv abstracts process environment lookups so resolvers can be
// driven by a fake environment in tests.
package osenv

import "os"

// Lookup reads environment variables.
type Lookup interface {
	LookupEnv(key string) (string, bool)
}

// OS reads the real process environment.
type OS struct{}

// LookupEnv implements Lookup using os.LookupEnv.
func (OS) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Map is a fixed environment, typically used in tests.
type Map map[string]string

// LookupEnv implements Lookup.
func (m Map) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
