package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Firebase  FirebaseConfig
	Server    ServerConfig
	Ephemeral EphemeralConfig
	STT       RPCConfig
	Diarize   RPCConfig
	AI        AIConfig
	Media     MediaRouterConfig
	Object    ObjectStoreConfig
	Internal  InternalConfig
	Codec     CodecConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// FirebaseConfig holds Firebase settings read from the environment. Nothing
// in this module consumes them: internal-service calls are recognized by
// the shared secret in InternalConfig, and no HTTP auth surface is wired
// from Firebase.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsPath string
	UseEmulator     bool
	EmulatorHost    string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// EphemeralConfig configures the Redis-backed Ephemeral Store.
type EphemeralConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RPCConfig configures a single external RPC collaborator (STT or
// diarization).
type RPCConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// AIConfig configures the ordered list of AI summarization/title providers.
type AIConfig struct {
	Endpoints []string
	Timeout   time.Duration
}

// MediaRouterConfig configures the realtime media router collaborator.
type MediaRouterConfig struct {
	Endpoint  string
	RoomPrefix string
}

// ObjectStoreConfig configures the object store (Google Cloud Storage).
type ObjectStoreConfig struct {
	Bucket          string
	CredentialsPath string
}

// InternalConfig holds the shared secret used for internal-service calls
// (session ownership bypass for the finalization/retranscription executors).
type InternalConfig struct {
	ServiceToken string
}

// CodecConfig configures the audio-codec step's timeout budget.
type CodecConfig struct {
	Timeout      time.Duration
	LargeTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "sessioncore"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			UseEmulator:     getEnvBool("FIREBASE_USE_EMULATOR", false),
			EmulatorHost:    getEnv("FIREBASE_EMULATOR_HOST", "localhost:9099"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Ephemeral: EphemeralConfig{
			Addr:     getEnv("EPHEMERAL_STORE_ADDR", "localhost:6379"),
			Password: getEnv("EPHEMERAL_STORE_PASSWORD", ""),
			DB:       getEnvInt("EPHEMERAL_STORE_DB", 0),
			TTL:      getEnvDuration("EPHEMERAL_STORE_TTL", 24*time.Hour),
		},
		STT: RPCConfig{
			Endpoint: getEnv("STT_ENDPOINT", "http://localhost:8001/transcribe"),
			Timeout:  getEnvDuration("STT_TIMEOUT", 30*time.Second),
		},
		Diarize: RPCConfig{
			Endpoint: getEnv("DIARIZATION_ENDPOINT", "http://localhost:8002/diarize"),
			Timeout:  getEnvDuration("DIARIZATION_TIMEOUT", 30*time.Second),
		},
		AI: AIConfig{
			Endpoints: getEnvList("AI_PROVIDER_ENDPOINTS", nil),
			Timeout:   getEnvDuration("AI_TIMEOUT", 30*time.Second),
		},
		Media: MediaRouterConfig{
			Endpoint:   getEnv("MEDIA_ROUTER_ENDPOINT", ""),
			RoomPrefix: getEnv("MEDIA_ROOM_PREFIX", "session"),
		},
		Object: ObjectStoreConfig{
			Bucket:          getEnv("OBJECT_STORE_BUCKET", ""),
			CredentialsPath: getEnv("OBJECT_STORE_CREDENTIALS_PATH", ""),
		},
		Internal: InternalConfig{
			ServiceToken: getEnv("INTERNAL_SERVICE_TOKEN", ""),
		},
		Codec: CodecConfig{
			Timeout:      getEnvDuration("CODEC_TIMEOUT", 60*time.Second),
			LargeTimeout: getEnvDuration("CODEC_LARGE_TIMEOUT", 300*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	var out []string
	start := 0
	for i := 0; i <= len(value); i++ {
		if i == len(value) || value[i] == ',' {
			if i > start {
				out = append(out, value[start:i])
			}
			start = i + 1
		}
	}
	return out
}
