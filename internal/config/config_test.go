package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		expectErr bool
		check     func(t *testing.T, cfg Config)
	}{
		{
			name: "Valores por defecto",
			check: func(t *testing.T, cfg Config) {
				if cfg != Default() {
					t.Errorf("Esperaba %+v, obtuvo %+v", Default(), cfg)
				}
			},
		},
		{
			name: "Variables de entorno",
			env: map[string]string{
				EnvAddr:       "127.0.0.1:9000",
				EnvDataDir:    "/data/shuffle",
				EnvPartitions: "8",
				EnvSpillLimit: "1024",
				EnvLogLevel:   "debug",
			},
			check: func(t *testing.T, cfg Config) {
				want := Config{Addr: "127.0.0.1:9000", DataDir: "/data/shuffle", Partitions: 8, SpillLimitBytes: 1024, LogLevel: logrus.DebugLevel}
				if cfg != want {
					t.Errorf("Esperaba %+v, obtuvo %+v", want, cfg)
				}
			},
		},
		{name: "Particiones no numéricas", env: map[string]string{EnvPartitions: "muchas"}, expectErr: true},
		{name: "Particiones en cero", env: map[string]string{EnvPartitions: "0"}, expectErr: true},
		{name: "Límite negativo", env: map[string]string{EnvSpillLimit: "-1"}, expectErr: true},
		{name: "Nivel de log inválido", env: map[string]string{EnvLogLevel: "ruidoso"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvAddr, EnvDataDir, EnvPartitions, EnvSpillLimit, EnvLogLevel} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if (err != nil) != tt.expectErr {
				t.Fatalf("Se esperaba error: %t, obtenido: %v", tt.expectErr, err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
