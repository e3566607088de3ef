package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvConfigPath names the environment variable that may point to the JSON
// config file when no -c/-config flag is given.
const EnvConfigPath = "SHOPKEEPER_CONFIG"

// Config holds runtime settings for the shopkeeper CLI.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the shop API; relative request
//     paths resolve against it.
//   - LoginPath, RefreshPath: token endpoints.
//   - DBPath: local SQLite file holding the session. Empty selects a file per
//     API origin under the user config dir (see DatabasePath).
//   - RequestTimeout: per-request HTTP client timeout.
//   - RefreshTimeout: bound for one renewal call.
//   - RateLimit: outbound requests per second, 0 disables limiting.
//   - PingInterval: how often the CLI probes server reachability.
//   - ExportDir: directory for exported reports when no bucket is set.
//   - ExportBucket and the S3* fields: upload exports to S3 instead.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL     string
	LoginPath      string
	RefreshPath    string
	DBPath         string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	RateLimit      float64
	PingInterval   time.Duration
	ExportDir      string
	ExportBucket   string
	ExportPrefix   string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.LoginPath = "/api/token/"
	c.RefreshPath = "/api/token/refresh/"
	c.RequestTimeout = 30 * time.Second
	c.RefreshTimeout = 15 * time.Second
	c.PingInterval = 30 * time.Second
	c.ExportDir = "."
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// userConfigDir is swapped in tests.
var userConfigDir = os.UserConfigDir

// DatabasePath returns DBPath, or a per-origin file
// <user config dir>/shopkeeper/<host>_<port>.db when DBPath is empty, so
// sessions against different APIs never mix.
func (c *Config) DatabasePath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}

	base, err := userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "shopkeeper", originSlug(c.APIBaseURL)+".db"), nil
}

// SecretPath is the install secret stored next to the database.
func (c *Config) SecretPath() (string, error) {
	db, err := c.DatabasePath()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(db, filepath.Ext(db)) + ".key", nil
}

func originSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "default"
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = u.Scheme
	}
	return strings.NewReplacer(".", "_", ":", "_").Replace(host) + "_" + port
}
