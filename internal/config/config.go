package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"time"
)

// Config holds the HTTP-facing settings. Concerns with their own lifecycle
// (oracle, redis, rate limit, cache, events, database) have their own
// Load*Config functions next to this one.
type Config struct {
	Env            string        // application environment (dev/test/prod)
	Port           string        // HTTP port to listen on
	StaticDir      string        // pre-built single-page front-end
	IncludeRaw     bool          // echo the raw model answer next to the html
	MinItemLength  int           // shortest formatted item kept, in runes
	KeywordsFile   string        // optional keyword table override
	RequestTimeout time.Duration // upper bound for one /chat request
	MaxBodyBytes   string        // echo body limit, e.g. "64K"
}

// Load reads Config from the environment, applying defaults for unset values.
func Load() Config {
	return Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("PORT", envStr("APP_PORT", "5000")),
		StaticDir:      envStr("STATIC_DIR", "static"),
		IncludeRaw:     envBool("CHAT_INCLUDE_RAW", true),
		MinItemLength:  envInt("MIN_ITEM_LENGTH", 3),
		KeywordsFile:   os.Getenv("KEYWORDS_FILE"),
		RequestTimeout: envDur("CHAT_REQUEST_TIMEOUT", 45*time.Second),
		MaxBodyBytes:   envStr("MAX_BODY_BYTES", "64K"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

