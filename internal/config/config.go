// Package config reads the configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/envelope-zero/forecast/internal/generator"
	"github.com/envelope-zero/forecast/internal/projection"
	"github.com/envelope-zero/forecast/internal/recurring"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the configuration of the forecast.
type Config struct {
	// APIURL is the URL the API is reachable at, used to build links
	APIURL *url.URL

	// Database is the path of the SQLite database. It is ignored when
	// Postgres is set.
	Database string

	// Postgres is the DSN of the Postgres database, if DB_HOST is set
	Postgres string

	HorizonMonths int
	MinimumWindow int

	// Primary is the pay type code of the primary account
	Primary string

	// Codes is the special day code table
	Codes recurring.CodeTable

	Money types.Money
}

// Load reads the configuration. A .env file in the working directory
// is loaded first if it exists. envPath loads a specific file instead.
func Load(envPath ...string) (Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return Config{}, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	apiURL, err := url.Parse(getEnvOrDefault("API_URL", "http://localhost:8080"))
	if err != nil {
		return Config{}, fmt.Errorf("environment variable API_URL must be a valid URL: %w", err)
	}

	horizon, err := parseIntEnv("HORIZON_MONTHS", generator.DefaultHorizon)
	if err != nil {
		return Config{}, err
	}

	window, err := parseIntEnv("MINIMUM_WINDOW_DAYS", projection.DefaultWindow)
	if err != nil {
		return Config{}, err
	}

	codes := recurring.DefaultCodes()
	if path, ok := os.LookupEnv("SPECIAL_CODES_FILE"); ok {
		codes, err = readCodes(path)
		if err != nil {
			return Config{}, err
		}
	}

	money, err := types.NewMoney(getEnvOrDefault("CURRENCY_LOCALE", "en-US"))
	if err != nil {
		return Config{}, err
	}

	c := Config{
		APIURL:        apiURL,
		Database:      getEnvOrDefault("DB_PATH", filepath.Join("data", "forecast.db")),
		HorizonMonths: horizon,
		MinimumWindow: window,
		Primary:       os.Getenv("PRIMARY_ACCOUNT"),
		Codes:         codes,
		Money:         money,
	}

	if _, ok := os.LookupEnv("DB_HOST"); ok {
		c.Postgres = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getEnvOrDefault("DB_NAME", "forecast"),
			getEnvOrDefault("DB_PORT", "5432"),
			getEnvOrDefault("DB_SSLMODE", "disable"),
		)
	}

	return c, nil
}

// readCodes reads a special code table from a YAML file.
func readCodes(path string) (recurring.CodeTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open special code file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("could not read special code file: %w", err)
	}

	return recurring.ParseCodes(data)
}

// SetupLogging configures the global logger.
//
// The log format can be set explicitly with LOG_FORMAT. If it is not set,
// it defaults to human readable for development and JSON for release.
func SetupLogging(out io.Writer) {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(ginMode)
	}

	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := out
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got '%s'", key, value)
	}

	return parsed, nil
}
