package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and retention windows.
type Config struct {
    Env                 string // application environment (e.g. "dev", "prod")
    Port                string // HTTP port to listen on
    DBUser              string // database username
    DBPass              string // database password (optional)
    DBHost              string // database host address
    DBPort              string // database port number
    DBName              string // database name
    JWTSecret           string // secret used to verify identity bearer tokens
    JanitorSecret       string // bearer secret for the maintenance endpoint
    CatalogBaseURL      string // base URL of the title catalog provider
    CatalogAPIKey       string // API key for the catalog provider
    RoomTTLHours        int    // hours before an unfinished room expires
    RoomRetentionDays   int    // days an expired room is kept before deletion
    PromptRetentionDays int    // days an answered watch prompt is kept
    BcryptCost          int    // bcrypt cost for hashing room PINs
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Retention windows
// have defaults so most deployments only set the connection settings.
func Load() Config {
    return Config{
        Env:                 must("APP_ENV"),              // environment (dev/test/prod)
        Port:                must("APP_PORT"),             // port to bind the HTTP server
        DBUser:              must("DB_USER"),              // database user
        DBPass:              os.Getenv("DB_PASS"),         // database password (empty allowed)
        DBHost:              must("DB_HOST"),              // database host
        DBPort:              must("DB_PORT"),              // database port
        DBName:              must("DB_NAME"),              // database name
        JWTSecret:           must("JWT_SECRET"),           // secret used to verify bearer tokens
        JanitorSecret:       must("JANITOR_SECRET"),       // shared secret for /v1/internal/janitor
        CatalogBaseURL:      must("CATALOG_BASE_URL"),     // catalog provider base URL
        CatalogAPIKey:       os.Getenv("CATALOG_API_KEY"), // catalog API key (empty allowed)
        RoomTTLHours:        intDefault("ROOM_TTL_HOURS", 24),
        RoomRetentionDays:   intDefault("ROOM_RETENTION_DAYS", 7),
        PromptRetentionDays: intDefault("PROMPT_RETENTION_DAYS", 30),
        BcryptCost:          intDefault("BCRYPT_COST", 10),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// intDefault reads an integer environment variable, falling back to def
// when the variable is unset.  A malformed value is a fatal error rather
// than a silent fallback.
func intDefault(key string, def int) int {
    s, ok := os.LookupEnv(key)
    if !ok || s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
