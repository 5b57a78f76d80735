package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// LookupFunc resolves one variable. os.LookupEnv is the production source.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment, applies defaults
// and validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source. Every unparsable or
// missing variable is reported, not just the first.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := errors.Join(decodeStruct(reflect.ValueOf(cfg).Elem(), lookup)...); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

var durationType = reflect.TypeOf(time.Duration(0))

// decodeStruct fills tagged fields of v, descending into nested sections.
//
// Tags:
//
//	env       primary variable name
//	envAlt    fallback variable name
//	default   value used when neither variable is set
//	required  "true" fails the load when nothing is set
//	unit      "bytes" accepts sizes like 512KiB or 50MB
func decodeStruct(v reflect.Value, lookup LookupFunc) []error {
	var errs []error
	t := v.Type()

	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if sf.Type.Kind() == reflect.Struct {
			errs = append(errs, decodeStruct(fv, lookup)...)
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}

		raw, ok := lookupFirst(lookup, name, sf.Tag.Get("envAlt"))
		if !ok {
			if sf.Tag.Get("required") == "true" {
				errs = append(errs, fmt.Errorf("required environment variable %s is not set", name))
				continue
			}
			raw = sf.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := assign(fv, raw, sf.Tag.Get("unit")); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %s=%q: %w", name, raw, err))
		}
	}

	return errs
}

// lookupFirst returns the first non-blank value among names.
func lookupFirst(lookup LookupFunc, names ...string) (string, bool) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if val, ok := lookup(name); ok && strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val), true
		}
	}
	return "", false
}

// assign parses raw into fv according to the field's type.
func assign(fv reflect.Value, raw, unit string) error {
	switch {
	case fv.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		fv.SetInt(int64(d))

	case unit == "bytes" && fv.CanInt():
		n, err := ParseByteSize(raw)
		if err != nil {
			return err
		}
		fv.SetInt(n)

	case fv.CanInt():
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		fv.SetInt(n)

	case fv.Kind() == reflect.String:
		fv.SetString(raw)

	case fv.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		fv.SetBool(b)

	case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
		fv.Set(reflect.ValueOf(splitList(raw)))

	default:
		return fmt.Errorf("unsupported field type: %s", fv.Type())
	}

	return nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var byteUnits = map[string]int64{
	"":    1,
	"B":   1,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
	"KIB": 1 << 10,
	"MIB": 1 << 20,
	"GIB": 1 << 30,
}

// ParseByteSize parses a plain byte count or a size with a decimal (KB, MB,
// GB) or binary (KiB, MiB, GiB) suffix. Units are case-insensitive.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if idx == 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}

	digits, unit := s, ""
	if idx > 0 {
		digits, unit = s[:idx], strings.ToUpper(strings.TrimSpace(s[idx:]))
	}

	mult, ok := byteUnits[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size unit %q", s[idx:])
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n > (1<<63-1)/mult {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n * mult, nil
}

// problems accumulates validation failures.
type problems []string

func (p *problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
}

// Validate checks that the configuration is usable and reports every
// failure at once.
func (c *Config) Validate() error {
	var p problems

	db := c.Database
	switch {
	case db.URL == "":
		p.addf("DATABASE_URL is required")
	case !strings.HasPrefix(db.URL, "postgres://") && !strings.HasPrefix(db.URL, "postgresql://"):
		p.addf("DATABASE_URL must be a postgres:// or postgresql:// URL")
	}
	if db.MaxConns <= 0 {
		p.addf("DB_MAX_CONNS must be positive")
	}
	if db.MinConns < 0 {
		p.addf("DB_MIN_CONNS must be non-negative")
	}
	if db.MaxConns < db.MinConns {
		p.addf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)
	}

	srv := c.Server
	if srv.Port <= 0 || srv.Port > 65535 {
		p.addf("SERVER_PORT (%d) must be 1-65535", srv.Port)
	}
	if srv.ReadTimeout < 0 || srv.WriteTimeout < 0 || srv.RequestTimeout < 0 {
		p.addf("SERVER_*_TIMEOUT values must be non-negative")
	}
	if srv.ShutdownTimeout <= 0 {
		p.addf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	up := c.Upload
	if up.MaxFileSize <= 0 {
		p.addf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if up.MaxConcurrent <= 0 {
		p.addf("UPLOAD_MAX_CONCURRENT must be positive")
	}
	if up.MaxWaitTime <= 0 {
		p.addf("UPLOAD_MAX_WAIT_TIME must be positive")
	}
	if up.Timeout <= 0 {
		p.addf("UPLOAD_TIMEOUT must be positive")
	}

	if c.Rate.Enabled {
		if c.Rate.RequestsPerMinute <= 0 {
			p.addf("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		}
		if c.Rate.UploadLimit < 0 {
			p.addf("RATE_LIMIT_UPLOAD must be non-negative")
		}
	}

	for _, entry := range c.Security.TrustedProxies {
		if !validProxy(entry) {
			p.addf("TRUSTED_PROXIES entry %q is not a valid CIDR or IP address", entry)
		}
	}

	if strings.TrimSpace(c.Export.FilePrefix) == "" {
		p.addf("EXPORT_FILE_PREFIX must not be empty")
	} else if strings.ContainsAny(c.Export.FilePrefix, `/\"`) {
		p.addf("EXPORT_FILE_PREFIX (%q) must not contain path separators or quotes", c.Export.FilePrefix)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.addf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.addf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	return p.err()
}

// validProxy accepts the same forms the real-IP middleware does.
func validProxy(entry string) bool {
	if _, err := netip.ParsePrefix(entry); err == nil {
		return true
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

// String returns the config for logging with the database URL masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: {Addr: %q}, Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, "+
		"Upload: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, "+
		"Rate: {Enabled: %v, RequestsPerMinute: %d, UploadLimit: %d}, "+
		"Export: {FilePrefix: %q}, Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(),
		c.Database.MaxConns, c.Database.MinConns,
		c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.Timeout,
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.UploadLimit,
		c.Export.FilePrefix, c.Logging.Level, c.Logging.Format,
	)
}
