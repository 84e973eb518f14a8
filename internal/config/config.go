package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config compartida por cmd/worker y cmd/client. Load lee las variables de
// entorno y cada binario puede pisarlas con flags.
type Config struct {
	Addr            string
	DataDir         string
	Partitions      int   // Particiones por defecto de una tarea
	SpillLimitBytes int64 // Límite del agregador del lado reduce (cmd/client)
	LogLevel        logrus.Level
}

const (
	EnvAddr       = "SHUFFLE_HTTP_ADDR"
	EnvDataDir    = "SHUFFLE_DATA_DIR"
	EnvPartitions = "SHUFFLE_PARTITIONS"
	EnvSpillLimit = "SHUFFLE_SPILL_LIMIT"
	EnvLogLevel   = "SHUFFLE_LOG_LEVEL"
)

func Default() Config {
	return Config{
		Addr:            ":8081",
		DataDir:         "/tmp/crunch-spark",
		Partitions:      4,
		SpillLimitBytes: 50 * 1024 * 1024, // 50MB antes de Spill
		LogLevel:        logrus.InfoLevel,
	}
}

func Load() (Config, error) {
	cfg := Default()
	cfg.Addr = envOrDefault(EnvAddr, cfg.Addr)
	cfg.DataDir = envOrDefault(EnvDataDir, cfg.DataDir)

	if v := envOrDefault(EnvPartitions, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s invalido: %q", EnvPartitions, v)
		}
		cfg.Partitions = n
	}
	if v := envOrDefault(EnvSpillLimit, ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("%s invalido: %q", EnvSpillLimit, v)
		}
		cfg.SpillLimitBytes = n
	}
	if v := envOrDefault(EnvLogLevel, ""); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s invalido: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
