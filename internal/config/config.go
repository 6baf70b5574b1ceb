// Package config resolves runtime settings from defaults, a .env file, the
// process environment and explicit overrides.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "FIREWORKS_WEB_"

	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultEnvironment     = "dev"
	defaultTemplatesDir    = "templates"
	defaultPublicDir       = "public"
	defaultContentDir      = "content"
	defaultLogLevel        = "info"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultCompressLevel   = 5
	defaultSessionIdle     = 30 * time.Minute
	defaultNavTick         = 100 * time.Millisecond
	defaultSubmitDelay     = 2000 * time.Millisecond
	defaultResetDelay      = 5000 * time.Millisecond
	defaultOffersInterval  = 5 * time.Second
	defaultSwiperInterval  = 4 * time.Second
	defaultGalleryInterval = 4 * time.Second
	defaultFeaturesPeriod  = 3 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	Log      LogConfig
	Session  SessionConfig
	Nav      NavConfig
	Contact  ContactConfig
	Carousel CarouselConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CompressLevel   int
}

// SiteConfig locates templates, assets and content and carries page metadata.
type SiteConfig struct {
	Environment     string
	DevMode         bool
	TemplatesDir    string
	PublicDir       string
	ContentDir      string
	CatalogFile     string
	BaseURL         string
	GAMeasurementID string
}

// Production reports whether the site runs with production cookies.
func (s SiteConfig) Production() bool {
	return s.Environment == "prod" || s.Environment == "production"
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// SessionConfig controls the visitor cookie and in-memory eviction.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Idle     time.Duration
}

// NavConfig holds the in-app precedence window.
type NavConfig struct {
	Tick time.Duration
}

// ContactConfig holds the simulated submission timings.
type ContactConfig struct {
	SubmitDelay time.Duration
	ResetDelay  time.Duration
}

// CarouselConfig holds autoplay intervals.
type CarouselConfig struct {
	Offers   time.Duration
	Swiper   time.Duration
	Gallery  time.Duration
	Features time.Duration
}

// ValidationError is returned when configuration values are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map. Values in the map take
// precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration. Precedence is defaults < .env < process
// environment < WithEnvMap.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	r := &reader{lookup: func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}}

	port := r.get("PORT", "")
	if port == "" {
		// Cloud Run style hosts inject a bare PORT.
		port = r.raw("PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:            r.get("ADDR", ":"+port),
			ReadTimeout:     r.duration("READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    r.duration("WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     r.duration("IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			CompressLevel:   r.integer("COMPRESS_LEVEL", defaultCompressLevel),
		},
		Site: SiteConfig{
			Environment:     strings.ToLower(r.get("ENV", defaultEnvironment)),
			DevMode:         r.flag("DEV", false),
			TemplatesDir:    r.get("TEMPLATES", defaultTemplatesDir),
			PublicDir:       r.get("PUBLIC", defaultPublicDir),
			ContentDir:      r.get("CONTENT", defaultContentDir),
			CatalogFile:     r.get("CATALOG", ""),
			BaseURL:         strings.TrimRight(r.get("SITE_URL", "http://localhost:"+port), "/"),
			GAMeasurementID: r.get("GA_MEASUREMENT_ID", ""),
		},
		Log: LogConfig{
			Level: strings.ToLower(r.get("LOG_LEVEL", defaultLogLevel)),
		},
		Session: SessionConfig{
			HashKey:  r.key("SESSION_HASH_KEY"),
			BlockKey: r.key("SESSION_BLOCK_KEY"),
			Idle:     r.duration("SESSION_IDLE", defaultSessionIdle),
		},
		Nav: NavConfig{
			Tick: r.duration("NAV_TICK", defaultNavTick),
		},
		Contact: ContactConfig{
			SubmitDelay: r.duration("CONTACT_SUBMIT_DELAY", defaultSubmitDelay),
			ResetDelay:  r.duration("CONTACT_RESET_DELAY", defaultResetDelay),
		},
		Carousel: CarouselConfig{
			Offers:   r.duration("CAROUSEL_OFFERS", defaultOffersInterval),
			Swiper:   r.duration("CAROUSEL_SWIPER", defaultSwiperInterval),
			Gallery:  r.duration("CAROUSEL_GALLERY", defaultGalleryInterval),
			Features: r.duration("CAROUSEL_FEATURES", defaultFeaturesPeriod),
		},
	}

	if err := validateConfig(cfg, r.invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	fields := append([]string(nil), invalid...)

	if cfg.Server.Addr == "" {
		fields = append(fields, "Server.Addr")
	}
	if cfg.Site.TemplatesDir == "" {
		fields = append(fields, "Site.TemplatesDir")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		fields = append(fields, "Log.Level")
	}
	if n := len(cfg.Session.HashKey); n != 0 && n < 32 {
		fields = append(fields, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		fields = append(fields, "Session.BlockKey")
	}
	if cfg.Site.Production() && len(cfg.Session.HashKey) == 0 {
		fields = append(fields, "Session.HashKey")
	}
	if cfg.Server.CompressLevel < 1 || cfg.Server.CompressLevel > 9 {
		fields = append(fields, "Server.CompressLevel")
	}
	positive := []struct {
		name  string
		value time.Duration
	}{
		{"Session.Idle", cfg.Session.Idle},
		{"Contact.SubmitDelay", cfg.Contact.SubmitDelay},
		{"Contact.ResetDelay", cfg.Contact.ResetDelay},
		{"Carousel.Offers", cfg.Carousel.Offers},
		{"Carousel.Swiper", cfg.Carousel.Swiper},
		{"Carousel.Gallery", cfg.Carousel.Gallery},
		{"Carousel.Features", cfg.Carousel.Features},
	}
	for _, p := range positive {
		if p.value <= 0 {
			fields = append(fields, p.name)
		}
	}
	if cfg.Nav.Tick < 0 {
		fields = append(fields, "Nav.Tick")
	}

	if len(fields) > 0 {
		return &ValidationError{fields: fields}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

// reader resolves prefixed keys and records the ones that fail to parse.
type reader struct {
	lookup  func(string) (string, bool)
	invalid []string
}

func (r *reader) raw(key, fallback string) string {
	if value, ok := r.lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (r *reader) get(key, fallback string) string {
	return r.raw(envPrefix+key, fallback)
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	value := r.get(key, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.invalid = append(r.invalid, envPrefix+key)
		return fallback
	}
	return d
}

func (r *reader) integer(key string, fallback int) int {
	value := r.get(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		r.invalid = append(r.invalid, envPrefix+key)
		return fallback
	}
	return parsed
}

func (r *reader) flag(key string, fallback bool) bool {
	value := r.get(key, "")
	if value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	r.invalid = append(r.invalid, envPrefix+key)
	return fallback
}

// key accepts hex-encoded or raw key material.
func (r *reader) key(key string) []byte {
	value := r.get(key, "")
	if value == "" {
		return nil
	}
	if decoded, err := hex.DecodeString(value); err == nil {
		return decoded
	}
	return []byte(value)
}
