package config

import (
	"log"
	"os"
	"strconv"
	"sync"
)

const (
	StoreBackendFile     = "file"
	StoreBackendSQLite   = "sqlite"
	StoreBackendPostgres = "postgres"
)

type StoreConfig struct {
	Backend     string
	JobsDir     string
	SQLitePath  string
	LatestCount int
}

var (
	storeConfig *StoreConfig
	storeOnce   sync.Once
)

func LoadStoreConfig() *StoreConfig {
	storeOnce.Do(func() {
		storeConfig = loadStoreConfig()
	})
	return storeConfig
}

func loadStoreConfig() *StoreConfig {
	latest := 2
	if raw := os.Getenv("LATEST_COUNT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			log.Printf("Warning: invalid LATEST_COUNT %q, defaulting to %d", raw, latest)
		} else {
			latest = n
		}
	}
	return &StoreConfig{
		Backend:     getenv("STORE_BACKEND", StoreBackendFile),
		JobsDir:     getenv("JOBS_DIR", "data/categories"),
		SQLitePath:  getenv("SQLITE_PATH", "data/jobs.db"),
		LatestCount: latest,
	}
}
