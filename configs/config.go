package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	PostgresURI   string
	RedisURI      string
	BaseURL       string
	FrontendURL   string
	SecretKey     string
	CookieName    string
	AdminPassword string
	AdminAPIKey   string
	SyncSchedule  string
	R2            R2
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI:   getEnv("POSTGRES_URI", ""),
		RedisURI:      getEnv("REDIS_URI", ""),
		BaseURL:       getEnv("BASE_URL", "http://localhost:3000"),
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:     getEnv("SECRET_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "import_from_pixelfed"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminAPIKey:   getEnv("ADMIN_API_KEY", ""),
		SyncSchedule:  getEnv("SYNC_SCHEDULE", "@every 00h15m00s"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
