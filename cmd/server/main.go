package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"voicedoc/internal/api"
	"voicedoc/internal/blobstore"
	"voicedoc/internal/config"
	"voicedoc/internal/document"
	"voicedoc/internal/logger"
	"voicedoc/internal/metastore"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	log := logger.New(false)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	blobs, err := blobstore.NewS3(ctx, blobstore.S3Config{
		Region:    cfg.AWSRegion,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}
	log.Info().Str("bucket", cfg.S3Bucket).Str("region", cfg.AWSRegion).Msg("blob storage ready")

	meta, err := metastore.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to metadata store")
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("metadata store ready")

	docs := document.NewService(meta, blobs, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	api.RegisterRoutes(r, api.NewHandler(docs, log), cfg.JWTSecret)

	log.Info().Str("port", cfg.Port).Msg("voicedoc backend running")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// corsMiddleware adds CORS headers for browser and mobile clients.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
