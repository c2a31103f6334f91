package config

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ConfigPath string
	Profile    string
	Verbose    bool
	ApiGinMode string

	Ip             string
	Port           string
	ApiAddress     string
	StorageAddress string
	RequestTimeout time.Duration

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// session storage
	SessionBackend string
	SessionDir     string
	SessionTTL     time.Duration
	RedisAddress   string
	RedisPassword  string
	RedisDB        int

	DBAddress  string
	DBUser     string
	DBPassword string
	DBName     string

	// auth
	AuthProvider string
	AuthAddress  string
	Realm        string
	ClientID     string
	ClientSecret string
	Audience     string
	JWKSURL      string
}

// Load reads the optional .env file at path, then the environment.
func Load(path string) Config {
	if err := godotenv.Load(path); err != nil {
		log.Printf("Failed to load the config file at %s, using default ones...", path)
	}

	s := strings.Split(path, "/")
	config := Config{
		ConfigPath: s[len(s)-1],
		Profile:    getEnv("PROFILE", "baremetal"),
		Verbose:    getBoolEnv("VERBOSE", "false"),
		ApiGinMode: getEnv("GIN_MODE", "debug"),

		Ip:             getEnv("IP", "localhost"),
		Port:           getEnv("PORT", "5050"),
		ApiAddress:     getEnv("API_ADDRESS", "http://localhost:8080"),
		StorageAddress: getEnv("STORAGE_ADDRESS", "http://localhost:8080"),
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 15*time.Second),

		AllowedOrigins: getEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvFields("ALLOW_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: getEnvFields("ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-Id"}),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "file")),
		SessionDir:     getEnv("SESSION_DIR", ""),
		SessionTTL:     getDurationEnv("SESSION_TTL", 24*time.Hour),
		RedisAddress:   getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),

		DBAddress:  getEnv("DB_ADDRESS", "localhost:5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "pms"),

		AuthProvider: strings.ToLower(getEnv("AUTH_PROVIDER", "backend")),
		AuthAddress:  getEnv("AUTH_ADDRESS", "http://localhost:5555"),
		Realm:        getEnv("KC_REALM", "pms-myproj"),
		ClientID:     getEnv("KC_CLIENT", "pms-front"),
		ClientSecret: getEnv("KC_CLIENT_SECRET", ""),
		Audience:     getEnv("KC_AUDIENCE", ""),
		JWKSURL:      getEnv("JWKS_URL", ""),
	}

	if config.Verbose {
		log.Print(config.String())
	}

	return config
}

// Addr is the address the gateway listens on.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%s", cfg.Ip, cfg.Port)
}

func getEnv(env, fallback string) string {
	if value, exists := os.LookupEnv(env); exists {
		return value
	}

	return fallback
}

func getEnvFields(env string, fallback []string) []string {
	if value, exists := os.LookupEnv(env); exists {
		fields := strings.Split(strings.TrimSpace(value), ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		return fields
	}

	return fallback
}

func getBoolEnv(env, fallback string) bool {
	if value, exists := os.LookupEnv(env); exists {
		return strings.ToLower(value) == "true"
	}

	return strings.ToLower(fallback) == "true"
}

func getIntEnv(env string, fallback int) int {
	if value, exists := os.LookupEnv(env); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}

	return fallback
}

// getDurationEnv accepts Go durations ("30s") or plain seconds.
func getDurationEnv(env string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(env)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}

	return fallback
}

func isSecret(fieldName string) bool {
	return strings.HasSuffix(fieldName, "Password") || strings.HasSuffix(fieldName, "Secret")
}

func (cfg Config) String() string {
	var strBuilder strings.Builder

	reflectedValues := reflect.ValueOf(cfg)
	reflectedTypes := reflect.TypeOf(cfg)

	strBuilder.WriteString(fmt.Sprintf("[CFG]CONFIGURATION: %s\n", cfg.ConfigPath))

	for i := 0; i < reflectedValues.NumField(); i++ {
		fieldName := reflectedTypes.Field(i).Name
		fieldValue := reflectedValues.Field(i).Interface()

		if s, ok := fieldValue.(string); ok && isSecret(fieldName) && s != "" {
			fieldValue = "****"
		}

		strBuilder.WriteString("[CFG]")
		if i < 9 {
			strBuilder.WriteString(fmt.Sprintf("%d.  ", i+1))
		} else {
			strBuilder.WriteString(fmt.Sprintf("%d. ", i+1))
		}
		if len(fieldName) <= 6 {
			strBuilder.WriteString(fmt.Sprintf("%v\t\t\t\t-> %v\n", fieldName, fieldValue))
		} else if len(fieldName) <= 14 {
			strBuilder.WriteString(fmt.Sprintf("%v\t\t\t-> %v\n", fieldName, fieldValue))
		} else {
			strBuilder.WriteString(fmt.Sprintf("%v\t\t-> %v\n", fieldName, fieldValue))
		}
	}

	return strBuilder.String()
}
