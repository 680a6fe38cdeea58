package config

import (
	"log"
	"os"
	"sync"
)

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = loadAppConfig()
	})
	return appConfig
}

func loadAppConfig() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
		log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
	}
	name := os.Getenv("APP_NAME")
	if name == "" {
		name = "Job Board"
	}
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = ":5000"
	}
	return &AppConfig{
		Name:    name,
		Env:     env,
		Port:    port,
		BaseURL: os.Getenv("APP_URL"),
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
