package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to verify access tokens
	PaymentHoldMin   int    // payment hold window for the active holder, in minutes
	QueueHoldMin     int    // queue hold window for waiting reservations, in minutes
	SweepIntervalSec int    // background expired-hold sweep interval, in seconds (0 disables)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Hold windows fall
// back to the engine defaults when unset.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),                       // environment (dev/test/prod)
		Port:             must("APP_PORT"),                      // port to bind the HTTP server
		DBUser:           must("DB_USER"),                       // database user
		DBPass:           os.Getenv("DB_PASS"),                  // database password (empty allowed)
		DBHost:           must("DB_HOST"),                       // database host
		DBPort:           must("DB_PORT"),                       // database port
		DBName:           must("DB_NAME"),                       // database name
		JWTSecret:        must("JWT_SECRET"),                    // secret used for verifying JWTs
		PaymentHoldMin:   intOr("PAYMENT_HOLD_MIN", 10),         // payment window granted to the holder
		QueueHoldMin:     intOr("QUEUE_HOLD_MIN", 30),           // wait window granted to queued requests
		SweepIntervalSec: intOr("EXPIRED_HOLD_SWEEP_SEC", 60),   // sweep cadence; promotion latency only
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

// intOr converts the environment variable to an integer, returning the
// default when the variable is unset.  A set-but-malformed value is a
// fatal configuration error, same as a missing required variable.
func intOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
