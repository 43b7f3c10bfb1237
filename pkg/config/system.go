package config

// ServerConfig holds resolved HTTP server configuration (§6.1).
type ServerConfig struct {
	ListenAddr string // e.g. ":8080"

	// APIKeyEnv names the environment variable holding the shared secret
	// the api-key middleware checks against the request header.
	APIKeyEnv string

	// AllowedOrigins lists the UI origins. The server registers no CORS
	// middleware and nothing reads this field.
	AllowedOrigins []string
}

// DatabaseConfig holds resolved Postgres connection configuration.
type DatabaseConfig struct {
	// DSNEnv names the environment variable holding the full connection
	// string (host/port/user/password/db all travel together, same as the
	// teacher's database client).
	DSNEnv string

	MaxConns int32
}
