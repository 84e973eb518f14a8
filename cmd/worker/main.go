package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"crunch-spark/internal/config"
	"crunch-spark/internal/storage"
	"crunch-spark/internal/worker"
)

// Se ejecuta el worker de shuffle
func main() {
	logrus.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuración inválida: %v", err)
	}

	// los flags pisan las variables de entorno
	addr := flag.String("addr", cfg.Addr, "Dirección HTTP del worker")
	dataDir := flag.String("data", cfg.DataDir, "Directorio de particiones y spills")
	partitions := flag.Int("partitions", cfg.Partitions, "Particiones si la tarea no indica ninguna")
	threads := flag.Int("threads", 4, "Tareas simultáneas")
	master := flag.String("master", "", "URL del Master (vacío: sin reportes)")
	id := flag.String("id", "", "ID del worker")
	flag.Parse()

	logrus.SetLevel(cfg.LogLevel)

	store := storage.NewShuffleStore()
	exec := worker.NewExecutionManager(*threads, *partitions, *dataDir, store)
	server := worker.NewServer(*id, *master, exec, store)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logrus.WithField("worker", server.WorkerID).Infof("Servidor iniciado en %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logrus.Fatalf("Error al iniciar servidor: %v", err)
	}
}
