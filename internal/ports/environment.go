package ports

// Environment abstracts process environment lookups for testability.
// Production code uses OSEnvironment adapter; tests use MockEnvironment.
type Environment interface {
	// LookupEnv returns the value of key and whether it is set.
	// A variable set to the empty string is reported as present.
	LookupEnv(key string) (string, bool)
}
