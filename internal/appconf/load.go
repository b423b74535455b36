package appconf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultUpstreamURL = "https://emma.mav.hu/otp2-backend/otp/routers/default/index/graphql"

var validate = validator.New()

// Load assembles the configuration from the environment. A .env file in the
// working directory is merged in when present. COVERAGE_FILE optionally
// points at a YAML file overriding the built-in coverage.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getenvInt("PORT", 4000),
		Env:             EnvFlagToEnvironment(os.Getenv("ENV")),
		Verbose:         getenvBool("VERBOSE"),
		RateLimit:       getenvInt("RATE_LIMIT", 0),
		UpstreamURL:     getenvDefault("OTP_URL", defaultUpstreamURL),
		UpstreamTimeout: getenvSeconds("UPSTREAM_TIMEOUT_SECONDS", 10*time.Second),
		ProxyURL:        os.Getenv("OTP_PROXY_URL"),
		Headers:         parseHeaders(os.Getenv("OTP_HEADERS")),
		FreshnessWindow: getenvSeconds("CACHE_TTL_SECONDS", 20*time.Second),
		TripConcurrency: getenvInt("TRIP_CONCURRENCY", 0),
		Coverage:        DefaultCoverage(),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
	}

	if path := os.Getenv("COVERAGE_FILE"); path != "" {
		coverage, err := loadCoverageFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("loading coverage file %s: %w", path, err)
		}
		cfg.Coverage = coverage
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration, including the coverage boxes.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, coverage := range map[string]DatasetCoverage{
		"train": cfg.Coverage.Train,
		"bus":   cfg.Coverage.Bus,
	} {
		if err := validate.Struct(coverage); err != nil {
			return fmt.Errorf("invalid %s coverage: %w", name, err)
		}
		if !coverage.Bounds.IsValid() {
			return fmt.Errorf("invalid %s coverage: bounds are not ordered south-west to north-east", name)
		}
	}
	return nil
}

func loadCoverageFile(path string) (Coverage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Coverage{}, err
	}
	var coverage Coverage
	if err := yaml.Unmarshal(data, &coverage); err != nil {
		return Coverage{}, fmt.Errorf("parsing YAML: %w", err)
	}
	return coverage, nil
}

// parseHeaders reads "Key=Value,Key2=Value2" into a header map.
func parseHeaders(value string) map[string]string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	headers := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(val)
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvSeconds(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return time.Duration(parsed) * time.Second
}

func getenvBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}
