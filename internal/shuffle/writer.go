package shuffle

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"crunch-spark/internal/common"
	"crunch-spark/internal/metrics"
)

var log = logrus.WithField("component", "shuffle")

var ErrWriterClosed = errors.New("shuffle: writer cerrado")

// Writer reparte los registros de una tarea en un archivo por particion.
// El bucket sale de la particion de la clave, no del contenido.
type Writer struct {
	taskID  string
	files   []*os.File
	writers []*bufio.Writer
	paths   []string
	sizes   []int64
	records []int64
	closed  bool
}

// NewWriter crea los N archivos: <basePath>_<taskID>_part_<i>.
func NewWriter(basePath, taskID string, numPartitions int) (*Writer, error) {
	if numPartitions <= 0 {
		numPartitions = common.DefaultPartitions
	}
	if err := os.MkdirAll(filepath.Dir(basePath), 0755); err != nil {
		return nil, fmt.Errorf("error creando directorio de shuffle: %w", err)
	}

	w := &Writer{
		taskID:  taskID,
		files:   make([]*os.File, 0, numPartitions),
		writers: make([]*bufio.Writer, 0, numPartitions),
		paths:   make([]string, 0, numPartitions),
		sizes:   make([]int64, numPartitions),
		records: make([]int64, numPartitions),
	}
	for i := 0; i < numPartitions; i++ {
		p := fmt.Sprintf("%s_%s_part_%d", basePath, taskID, i)
		f, err := os.Create(p)
		if err != nil {
			w.Abort()
			return nil, fmt.Errorf("error creando particion %d: %w", i, err)
		}
		w.files = append(w.files, f)
		w.writers = append(w.writers, bufio.NewWriter(f))
		w.paths = append(w.paths, p)
	}
	return w, nil
}

func (w *Writer) NumPartitions() int {
	return len(w.sizes)
}

func (w *Writer) Write(rec Record) error {
	if w.closed {
		return ErrWriterClosed
	}
	pid := bucket(rec.Key.Partition(), len(w.writers))
	n, err := WriteRecord(w.writers[pid], rec)
	if err != nil {
		return fmt.Errorf("error escribiendo particion %d: %w", pid, err)
	}
	w.sizes[pid] += int64(n)
	w.records[pid]++
	metrics.RecordsWritten.Inc()
	return nil
}

// Close vacia los buffers y devuelve la metadata ordenada por particion.
func (w *Writer) Close() ([]common.ShuffleMeta, error) {
	if w.closed {
		return nil, ErrWriterClosed
	}
	w.closed = true

	var firstErr error
	metas := make([]common.ShuffleMeta, 0, len(w.paths))
	for pid, path := range w.paths {
		if err := w.writers[pid].Flush(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("error vaciando particion %d: %w", pid, err)
		}
		if err := w.files[pid].Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("error cerrando particion %d: %w", pid, err)
		}
		metas = append(metas, common.ShuffleMeta{
			TaskID:       w.taskID,
			PartitionKey: int32(pid),
			Path:         path,
			Size:         w.sizes[pid],
			Records:      w.records[pid],
		})
	}
	if firstErr != nil {
		return nil, firstErr
	}
	log.WithFields(logrus.Fields{"task": w.taskID, "partitions": len(metas)}).Info("Particiones escritas")
	return metas, nil
}

// Abort cierra y borra todo lo escrito.
func (w *Writer) Abort() {
	w.closed = true
	for _, f := range w.files {
		f.Close()
	}
	for _, p := range w.paths {
		os.Remove(p)
	}
}
