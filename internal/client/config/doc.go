// Package config loads runtime configuration for the shopkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags -c or -config,
//     or the SHOPKEEPER_CONFIG environment variable.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-d string   session database path
//	-t int      request timeout (seconds)
//	-r float    request rate limit per second
//	-i int      online status check interval (seconds)
//	-e string   export directory
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for timeouts, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://shop.example.com",
//	  "request_timeout": "30s",
//	  "refresh_timeout": "10s",
//	  "rate_limit": 5,
//	  "export_bucket": "reports",
//	  "s3_endpoint": "http://127.0.0.1:9000"
//	}
//
// Primary API
//
//   - type Config                     - runtime settings
//   - func LoadConfig() *Config       - builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   - sets sensible defaults
//   - func (*Config) DatabasePath()   - session database, per API origin by default
package config
