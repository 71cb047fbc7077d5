package config

import "os"

// Config holds the environment-derived settings the server and seed
// commands need to connect to Mongo and Redis and to sign tokens.
type Config struct {
	MongoURI      string
	RedisAddr     string
	HTTPPort      string
	WSPort        string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
}

func Load() *Config {
	return &Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		WSPort:        getEnv("WS_PORT", "8081"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-in-production"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "password123"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
