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
	defaultAppPort        = "5000"
	defaultAppEnv         = "local"
	defaultLogLevel       = "debug"
	defaultStoreDriver    = "mongo"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDB        = "foodchefDB"
	defaultTokenSecret    = "change-me-in-production"
	defaultTokenTTL       = time.Hour
	defaultCurrency       = "usd"
	defaultRequestTimeout = 10 * time.Second
	defaultMaxBodyBytes   = 4 << 20
)

// defaultCORSOrigins are the front-ends the marketplace is deployed behind.
var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5000",
	"https://foodmate-2d2d9.web.app",
	"https://foodshare-gamma.vercel.app",
}

// knownKeys are the keys that may be overridden from the process environment.
var knownKeys = []string{
	"APP_PORT", "APP_ENV", "LOG_LEVEL", "LOG_MONGO",
	"STORE_DRIVER", "MONGO_URI", "MONGO_DB", "MONGO_TRANSACTIONS",
	"ACCESS_TOKEN_SECRET", "ACCESS_TOKEN_TTL",
	"STRIPE_SECRET_KEY", "PAYMENT_CURRENCY",
	"CORS_ORIGINS", "REQUEST_TIMEOUT", "MAX_BODY_BYTES", "ADMIN_EMAIL",
}

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json, then .env, then the process environment.
// Later sources win. Safe to call many times; the files are read once.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":            defaultAppPort,
		"APP_ENV":             defaultAppEnv,
		"LOG_LEVEL":           defaultLogLevel,
		"STORE_DRIVER":        defaultStoreDriver,
		"MONGO_URI":           defaultMongoURI,
		"MONGO_DB":            defaultMongoDB,
		"ACCESS_TOKEN_SECRET": defaultTokenSecret,
		"PAYMENT_CURRENCY":    defaultCurrency,
	}
}

func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }
func LogLevel() string {
	_ = Load()
	return strings.ToLower(get("LOG_LEVEL", defaultLogLevel))
}

// LogToMongo reports whether log records should also be shipped to the store.
func LogToMongo() bool { _ = Load(); return getBool("LOG_MONGO", false) }

// StoreDriver is "mongo" or "memory". Unknown values fall back to mongo.
func StoreDriver() string {
	_ = Load()
	switch d := strings.ToLower(get("STORE_DRIVER", defaultStoreDriver)); d {
	case "mongo", "memory":
		return d
	default:
		return defaultStoreDriver
	}
}

func MongoURI() string { _ = Load(); return get("MONGO_URI", defaultMongoURI) }
func MongoDB() string  { _ = Load(); return get("MONGO_DB", defaultMongoDB) }

// MongoTransactions enables multi-document transactions for payment recording.
// Requires a replica set or sharded cluster.
func MongoTransactions() bool { _ = Load(); return getBool("MONGO_TRANSACTIONS", false) }

func AccessTokenSecret() string {
	_ = Load()
	return get("ACCESS_TOKEN_SECRET", defaultTokenSecret)
}

func AccessTokenTTL() time.Duration {
	_ = Load()
	return getDuration("ACCESS_TOKEN_TTL", defaultTokenTTL)
}

func StripeSecretKey() string { _ = Load(); return get("STRIPE_SECRET_KEY", "") }
func PaymentCurrency() string { _ = Load(); return strings.ToLower(get("PAYMENT_CURRENCY", defaultCurrency)) }
func AdminEmail() string      { _ = Load(); return get("ADMIN_EMAIL", "") }
func RequestTimeout() time.Duration {
	_ = Load()
	return getDuration("REQUEST_TIMEOUT", defaultRequestTimeout)
}

// MaxBodyBytes caps request bodies (default 4 MB).
func MaxBodyBytes() int64 {
	_ = Load()
	n, err := strconv.ParseInt(get("MAX_BODY_BYTES", ""), 10, 64)
	if err != nil || n <= 0 {
		return defaultMaxBodyBytes
	}
	return n
}

// CORSOrigins returns the comma separated CORS_ORIGINS list, or the defaults.
func CORSOrigins() []string {
	_ = Load()
	raw := get("CORS_ORIGINS", "")
	if raw == "" {
		return append([]string(nil), defaultCORSOrigins...)
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

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

	mergeProcessEnv(loaded)

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
		case bool, float64:
			s = fmt.Sprint(v)
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
	if _, err := os.Stat(path); err != nil {
		return err
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for key, value := range env {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return nil
}

func mergeProcessEnv(out map[string]string) {
	for _, key := range knownKeys {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			out[key] = strings.TrimSpace(v)
		}
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

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
