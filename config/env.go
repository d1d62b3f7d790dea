package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseDriver = "mysql"
	defaultSQLiteDSN      = "church_cafe.db"
	defaultRedisAddr      = "localhost:6379"
	defaultJWTSecret      = "change_this_secret"
	defaultJWTExpiresIn   = "7d"
	defaultAppPort        = "4000"
	defaultAppEnv         = "development"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, .env and the process environment (in that
// order of precedence, last wins) on top of the built-in defaults.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":        defaultAppEnv,
		"APP_PORT":       defaultAppPort,
		"APP_TIMEZONE":   "UTC",
		"DB_DRIVER":      defaultDatabaseDriver,
		"DB_HOST":        "localhost",
		"DB_PORT":        "3306",
		"DB_USER":        "root",
		"DB_PASSWORD":    "",
		"DB_NAME":        "church_cafe",
		"DATABASE_DSN":   "",
		"JWT_SECRET":     defaultJWTSecret,
		"JWT_EXPIRES_IN": defaultJWTExpiresIn,
		"CORS_ORIGIN":    "*",
		"REDIS_ADDR":     defaultRedisAddr,
		"REDIS_PASSWORD": "",
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func IsProduction() bool {
	env := strings.ToLower(AppEnv())
	return env == "production" || env == "prod"
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// Location is the time zone used to decide which calendar day an order
// belongs to. Unknown zone names fall back to UTC.
func Location() *time.Location {
	_ = Load()
	loc, err := time.LoadLocation(get("APP_TIMEZONE", "UTC"))
	if err != nil {
		return time.UTC
	}
	return loc
}

// ── Database ─────────────────────────────────────────────────────────────────

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

// DatabaseDSN returns DATABASE_DSN when set, otherwise a DSN assembled from
// the DB_HOST / DB_PORT / DB_USER / DB_PASSWORD / DB_NAME parts.
func DatabaseDSN() string {
	_ = Load()

	if override := get("DATABASE_DSN", ""); override != "" {
		return override
	}

	host := get("DB_HOST", "localhost")
	port := get("DB_PORT", "3306")
	user := get("DB_USER", "root")
	pass := get("DB_PASSWORD", "")
	name := get("DB_NAME", "church_cafe")

	switch DatabaseDriver() {
	case "postgres":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", host, user, pass, name, port)
	case "sqlserver":
		return fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s", user, pass, host, port, name)
	case "sqlite":
		return defaultSQLiteDSN
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", user, pass, host, port, name)
	}
}

// OrderItemsSchema selects the order_items shape created by migrations:
// "item" (product_item_id) or "product" (product_id).
func OrderItemsSchema() string {
	_ = Load()
	if strings.EqualFold(get("ORDER_ITEMS_SCHEMA", "item"), "product") {
		return "product"
	}
	return "item"
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// JWTExpiry parses JWT_EXPIRES_IN. Accepts Go durations ("36h") and a day
// suffix ("7d"); anything unparsable yields seven days.
func JWTExpiry() time.Duration {
	_ = Load()
	return ParseExpiry(get("JWT_EXPIRES_IN", defaultJWTExpiresIn))
}

func ParseExpiry(raw string) time.Duration {
	const fallback = 7 * 24 * time.Hour

	raw = strings.TrimSpace(strings.ToLower(raw))
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || days <= 0 {
			return fallback
		}
		return time.Duration(days) * 24 * time.Hour
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CORSOrigins splits CORS_ORIGIN on commas.
func CORSOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("CORS_ORIGIN", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// ── Redis ────────────────────────────────────────────────────────────────────

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func CatalogCacheTTL() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "http://localhost:4000/storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Relay / audit ────────────────────────────────────────────────────────────

func AuditMongoURI() string { _ = Load(); return get("AUDIT_MONGO_URI", "") }
func AuditMongoDB() string  { _ = Load(); return get("AUDIT_MONGO_DB", "church_cafe") }

// RelayWorkers is the number of relay lanes. Events of one order always
// share a lane.
func RelayWorkers() int {
	return Int("RELAY_WORKERS", 4)
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mergeEnviron(os.Environ(), loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(v)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for key, value := range env {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return nil
}

func mergeEnviron(environ []string, out map[string]string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[strings.ToUpper(key)] = value
	}
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Int reads an integer key, returning fallback when absent or malformed.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

// Set overrides a single key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
