package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"crunch-spark/internal/common"
	"crunch-spark/internal/shuffle"
	"crunch-spark/internal/storage"
)

var log = logrus.WithField("component", "worker")

var ErrInvalidTask = errors.New("tarea invalida")

// ==========================================
// 1. POOL DE EJECUCIÓN
// ==========================================

// ExecutionManager controla la concurrencia en el nodo.
type ExecutionManager struct {
	maxThreads int
	semaphore  chan struct{} // Semáforo para limitar concurrencia
	partitions int           // Particiones si la tarea no indica ninguna
	dataDir    string
	store      *storage.ShuffleStore
}

func NewExecutionManager(maxThreads, partitions int, dataDir string, store *storage.ShuffleStore) *ExecutionManager {
	if maxThreads <= 0 {
		maxThreads = 1
	}
	if partitions <= 0 {
		partitions = common.DefaultPartitions
	}
	log.Infof("Inicializado pool con %d hilos y %d particiones por defecto", maxThreads, partitions)
	return &ExecutionManager{
		maxThreads: maxThreads,
		semaphore:  make(chan struct{}, maxThreads),
		partitions: partitions,
		dataDir:    dataDir,
		store:      store,
	}
}

// Submit ejecuta la tarea cuando hay un hilo libre y registra sus
// particiones para que otros Workers las descarguen.
func (e *ExecutionManager) Submit(ctx context.Context, task common.Task) ([]common.ShuffleMeta, error) {
	if task.TaskID == "" || task.InputPath == "" {
		return nil, fmt.Errorf("%w: task_id e input_path son obligatorios", ErrInvalidTask)
	}

	select {
	case e.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.semaphore }()

	log.WithFields(logrus.Fields{"task": task.TaskID, "active": len(e.semaphore), "max": e.maxThreads}).Info("Iniciando tarea")
	metas, err := e.executeMapSide(ctx, task)
	if err != nil {
		return nil, err
	}
	e.store.Save(task.TaskID, metas)
	return metas, nil
}

// ==========================================
// 2. LADO MAP: particionar la entrada
// ==========================================

func (e *ExecutionManager) executeMapSide(ctx context.Context, task common.Task) ([]common.ShuffleMeta, error) {
	inputFile, err := os.Open(task.InputPath)
	if err != nil {
		return nil, fmt.Errorf("error leyendo input: %w", err)
	}
	defer inputFile.Close()

	numPartitions := task.NumPartitions
	switch {
	case task.OutputType == common.OutputTypeLocalSpill:
		numPartitions = common.DefaultPartitions
	case numPartitions <= 0:
		numPartitions = e.partitions
	}
	sep := task.Separator
	if sep == "" {
		sep = "\t"
	}

	w, err := shuffle.NewWriter(e.outputBase(task), task.TaskID, numPartitions)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(inputFile)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			w.Abort()
			return nil, err
		}
		key, value, _ := strings.Cut(scanner.Text(), sep)
		if err := w.Write(shuffle.NewKeyedRecord([]byte(key), []byte(value), numPartitions)); err != nil {
			w.Abort()
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		w.Abort()
		return nil, fmt.Errorf("error leyendo input: %w", err)
	}
	return w.Close()
}

func (e *ExecutionManager) outputBase(task common.Task) string {
	if task.OutputPath != "" {
		return task.OutputPath
	}
	return filepath.Join(e.dataDir, task.TaskID, "map")
}
