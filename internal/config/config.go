// Package config loads Crate configuration from defaults, a TOML file, a .env
// file, environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/listenupapp/crate-server/internal/logger"
)

// DefaultConfigFile is read from the working directory when no file is named.
const DefaultConfigFile = "crate.toml"

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Data    DataConfig
	Library LibraryConfig
	Server  ServerConfig
	LastFM  LastFMConfig
	Groups  GroupsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig locates on-disk state. The SQLite database, badger cache and
// bleve index all live under BasePath.
type DataConfig struct {
	BasePath string
}

// DBPath is the SQLite database file.
func (d DataConfig) DBPath() string { return filepath.Join(d.BasePath, "crate.db") }

// CachePath is the badger directory.
func (d DataConfig) CachePath() string { return filepath.Join(d.BasePath, "cache") }

// IndexPath is the bleve index directory.
func (d DataConfig) IndexPath() string { return filepath.Join(d.BasePath, "search") }

// LibraryConfig holds music library configuration.
type LibraryConfig struct {
	MusicPath string // Optional; import can also be run with an explicit directory
	Watch     bool   // Re-import changed files while the server runs
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	RateLimit    float64 // requests per second per client IP; 0 disables
	RateBurst    int
}

// LastFMConfig holds Last.fm enrichment configuration.
type LastFMConfig struct {
	APIKey            string
	APISecret         string
	RequestsPerSecond float64
	CacheTTL          time.Duration
	SimilarLimit      int
	MatchThreshold    float64
}

// Enabled reports whether an API key is configured.
func (c LastFMConfig) Enabled() bool { return c.APIKey != "" }

// GroupsConfig points at an optional curated groups file.
type GroupsConfig struct {
	File string
}

// setting is one configuration value and the names it is known by in each
// source. Key is the dotted koanf path used in the TOML file.
type setting struct {
	key   string
	env   string
	flag  string
	def   string
	usage string
}

//nolint:gochecknoglobals // Static table
var settings = []setting{
	{"app.environment", "CRATE_ENV", "env", "development", "Environment (development, staging, production)"},
	{"logger.level", "CRATE_LOG_LEVEL", "log-level", "info", "Log level (debug, info, warn, error)"},
	{"data.base_path", "CRATE_DATA_PATH", "data-path", "", "Directory for the database, cache and search index (default: ~/Crate)"},
	{"library.music_path", "CRATE_MUSIC_PATH", "music-path", "", "Music library directory"},
	{"library.watch", "CRATE_WATCH", "watch", "false", "Re-import changed music files while serving"},
	{"server.port", "CRATE_PORT", "port", "8080", "Server port"},
	{"server.read_timeout", "CRATE_READ_TIMEOUT", "read-timeout", "15s", "HTTP read timeout"},
	{"server.write_timeout", "CRATE_WRITE_TIMEOUT", "write-timeout", "30s", "HTTP write timeout"},
	{"server.idle_timeout", "CRATE_IDLE_TIMEOUT", "idle-timeout", "60s", "HTTP idle timeout"},
	{"server.cors_origins", "CRATE_CORS_ORIGINS", "cors-origins", "*", "Comma-separated allowed CORS origins"},
	{"server.rate_limit", "CRATE_RATE_LIMIT", "rate-limit", "20", "Requests per second per client IP (0 disables)"},
	{"server.rate_burst", "CRATE_RATE_BURST", "rate-burst", "40", "Rate limit burst size"},
	{"lastfm.api_key", "LASTFM_API_KEY", "lastfm-api-key", "", "Last.fm API key"},
	{"lastfm.api_secret", "LASTFM_API_SECRET", "lastfm-api-secret", "", "Last.fm API secret"},
	{"lastfm.requests_per_second", "CRATE_LASTFM_RPS", "lastfm-rps", "5", "Outbound Last.fm requests per second"},
	{"lastfm.cache_ttl", "CRATE_LASTFM_CACHE_TTL", "lastfm-cache-ttl", "720h", "How long Last.fm responses and enrichments stay fresh"},
	{"lastfm.similar_limit", "CRATE_SIMILAR_LIMIT", "similar-limit", "50", "Similar artists fetched per artist"},
	{"lastfm.match_threshold", "CRATE_MATCH_THRESHOLD", "match-threshold", "0.85", "Fuzzy artist match threshold (0-1]"},
	{"groups.file", "CRATE_GROUPS_FILE", "groups-file", "", "TOML file with curated genre groups"},
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is the TOML file. Empty falls back to $CRATE_CONFIG, then
	// ./crate.toml if it exists.
	ConfigFile string
	// EnvFile is loaded into the environment without overriding set vars.
	// Empty means ".env".
	EnvFile string
	// Flags, if set, supplies the highest-precedence values. Only flags
	// the user actually set are consulted.
	Flags *pflag.FlagSet
}

// RegisterFlags adds configuration flags to fs. With no names every setting
// gets a flag; otherwise only the named ones do. "config" and "env-file"
// are always added.
func RegisterFlags(fs *pflag.FlagSet, names ...string) {
	fs.String("config", "", "Path to TOML config file (default: ./"+DefaultConfigFile+")")
	fs.String("env-file", ".env", "Path to .env file")

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, s := range settings {
		if len(want) > 0 && !want[s.flag] {
			continue
		}
		fs.String(s.flag, "", s.usage)
	}
}

// Load resolves every setting and validates the result.
func Load(opts Options) (*Config, error) {
	if opts.Flags != nil {
		if v := changedFlag(opts.Flags, "config"); v != "" {
			opts.ConfigFile = v
		}
		if v := changedFlag(opts.Flags, "env-file"); v != "" {
			opts.EnvFile = v
		}
	}

	if opts.EnvFile == "" {
		opts.EnvFile = ".env"
	}
	if err := loadEnvFile(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	k, err := loadFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.key] = resolve(s, k, opts.Flags)
	}

	cfg, err := build(values)
	if err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile reads the TOML layer. A missing default file is not an error; a
// missing file the user named is.
func loadFile(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	explicit := true
	if path == "" {
		path = os.Getenv("CRATE_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
		explicit = false
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return k, nil
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return k, nil
}

// resolve returns the highest-precedence value for s.
func resolve(s setting, k *koanf.Koanf, fs *pflag.FlagSet) string {
	if fs != nil {
		if v := changedFlag(fs, s.flag); v != "" {
			return v
		}
	}
	if v := os.Getenv(s.env); v != "" {
		return v
	}
	if k.Exists(s.key) {
		// TOML arrays (cors_origins) arrive as slices.
		if _, isList := k.Get(s.key).([]any); isList {
			return strings.Join(k.Strings(s.key), ",")
		}
		return k.String(s.key)
	}
	return s.def
}

func changedFlag(fs *pflag.FlagSet, name string) string {
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return ""
	}
	return f.Value.String()
}

func build(v map[string]string) (*Config, error) {
	p := parser{values: v}

	cfg := &Config{
		App:     AppConfig{Environment: v["app.environment"]},
		Logger:  LoggerConfig{Level: v["logger.level"]},
		Data:    DataConfig{BasePath: v["data.base_path"]},
		Library: LibraryConfig{MusicPath: v["library.music_path"], Watch: p.bool("library.watch")},
		Server: ServerConfig{
			Port:         v["server.port"],
			ReadTimeout:  p.duration("server.read_timeout"),
			WriteTimeout: p.duration("server.write_timeout"),
			IdleTimeout:  p.duration("server.idle_timeout"),
			CORSOrigins:  splitList(v["server.cors_origins"]),
			RateLimit:    p.float("server.rate_limit"),
			RateBurst:    p.int("server.rate_burst"),
		},
		LastFM: LastFMConfig{
			APIKey:            v["lastfm.api_key"],
			APISecret:         v["lastfm.api_secret"],
			RequestsPerSecond: p.float("lastfm.requests_per_second"),
			CacheTTL:          p.duration("lastfm.cache_ttl"),
			SimilarLimit:      p.int("lastfm.similar_limit"),
			MatchThreshold:    p.float("lastfm.match_threshold"),
		},
		Groups: GroupsConfig{File: v["groups.file"]},
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// parser converts resolved strings, keeping the first error.
type parser struct {
	values map[string]string
	err    error
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, p.values[key], err)
	}
}

func (p *parser) duration(key string) time.Duration {
	d, err := time.ParseDuration(p.values[key])
	if err != nil {
		p.fail(key, err)
	}
	return d
}

func (p *parser) int(key string) int {
	n, err := strconv.Atoi(p.values[key])
	if err != nil {
		p.fail(key, err)
	}
	return n
}

func (p *parser) float(key string) float64 {
	f, err := strconv.ParseFloat(p.values[key], 64)
	if err != nil {
		p.fail(key, err)
	}
	return f
}

// bool accepts "true", "1" and "yes" (case-insensitive) as true.
func (p *parser) bool(key string) bool {
	switch strings.ToLower(p.values[key]) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	if !logger.ValidLevel(c.Logger.Level) {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}

	if c.Server.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return errors.New("rate burst must be positive when rate limiting is on")
	}

	if c.LastFM.RequestsPerSecond <= 0 {
		return errors.New("lastfm requests per second must be positive")
	}
	if c.LastFM.SimilarLimit <= 0 {
		return errors.New("similar limit must be positive")
	}
	if c.LastFM.MatchThreshold <= 0 || c.LastFM.MatchThreshold > 1 {
		return fmt.Errorf("match threshold must be in (0, 1], got %v", c.LastFM.MatchThreshold)
	}
	if c.LastFM.CacheTTL <= 0 {
		return errors.New("lastfm cache ttl must be positive")
	}

	return nil
}

func (c *Config) expandPaths() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	if c.Data.BasePath, err = expandPath(c.Data.BasePath, filepath.Join(home, "Crate")); err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	if c.Library.MusicPath, err = expandPath(c.Library.MusicPath, ""); err != nil {
		return fmt.Errorf("invalid music path: %w", err)
	}
	if c.Groups.File, err = expandPath(c.Groups.File, ""); err != nil {
		return fmt.Errorf("invalid groups file: %w", err)
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// loadEnvFile loads KEY=value lines (# comments) into the environment.
// Variables that are already set win.
func loadEnvFile(path string) error {
	f, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
