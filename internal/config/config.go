package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port string

	// Blob storage. All four are required for the S3 client to function;
	// absence is a startup error, not a per-request one.
	AWSRegion    string
	S3Bucket     string
	AWSAccessKey string
	AWSSecretKey string
	S3Endpoint   string

	// Metadata store.
	MongoURI      string
	MongoDatabase string

	// Identity for the per-user listing.
	JWTSecret string

	// Transcription/translation provider (client side).
	OpenAIKey   string
	OpenAIModel string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		AWSRegion:     os.Getenv("AWS_REGION"),
		S3Bucket:      os.Getenv("S3_BUCKET_NAME"),
		AWSAccessKey:  os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "voicedoc"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
	}

	for _, v := range []struct{ name, value string }{
		{"AWS_REGION", cfg.AWSRegion},
		{"S3_BUCKET_NAME", cfg.S3Bucket},
		{"AWS_ACCESS_KEY_ID", cfg.AWSAccessKey},
		{"AWS_SECRET_ACCESS_KEY", cfg.AWSSecretKey},
	} {
		if v.value == "" {
			return nil, fmt.Errorf("%s is required. Please set it as an environment variable or in .env", v.name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
