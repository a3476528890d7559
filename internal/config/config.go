package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers soportados para el store de documentos.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Config agrupa la configuración necesaria para correr la aplicación.
type Config struct {
	Port           string
	DatabaseURL    string
	DatabaseName   string
	Driver         string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
}

// loadDotEnv se puede reemplazar en tests.
var loadDotEnv = func() error {
	return godotenv.Load()
}

// Load lee variables de entorno y valida lo mínimo indispensable.
// Si existe un .env en el directorio actual se carga primero; las variables ya definidas ganan.
func Load() (Config, error) {
	// Un .env ausente no es error.
	_ = loadDotEnv()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}
	// Normalizamos por si alguien manda ":3000"
	port = strings.TrimPrefix(port, ":")

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		databaseURL = strings.TrimSpace(os.Getenv("MONGODB_URI"))
	}
	if databaseURL == "" {
		return Config{}, fmt.Errorf("missing required env var: DATABASE_URL")
	}

	driver, err := driverFor(databaseURL)
	if err != nil {
		return Config{}, err
	}

	requestTimeout := 10 * time.Second
	if value := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT %q", value)
		}
		requestTimeout = parsed
	}

	return Config{
		Port:           port,
		DatabaseURL:    databaseURL,
		DatabaseName:   envOrDefault("DATABASE_NAME", "Computacion"),
		Driver:         driver,
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
		RequestTimeout: requestTimeout,
	}, nil
}

// driverFor decide el backend a partir del esquema de la URL.
func driverFor(databaseURL string) (string, error) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "mongodb", "mongodb+srv":
		return DriverMongo, nil
	case "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL scheme %q", parsed.Scheme)
	}
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
