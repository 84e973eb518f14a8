package shuffle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crunch-spark/internal/bytearray"
	"crunch-spark/internal/metrics"
)

// Aggregator agrupa valores por clave en memoria y vuelca a disco cuando se
// pasa del limite. Dos claves caen en el mismo grupo solo si coinciden
// particion y contenido.
type Aggregator struct {
	mu         sync.Mutex
	dir        string
	data       map[bytearray.IntByteArray][]bytearray.ByteArray
	sizeBytes  int64
	limit      int64
	spillFiles []string
}

// NewAggregator guarda los spills en dir (os.TempDir() si esta vacio).
func NewAggregator(dir string, limit int64) *Aggregator {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Aggregator{
		dir:   dir,
		data:  make(map[bytearray.IntByteArray][]bytearray.ByteArray),
		limit: limit,
	}
}

func (m *Aggregator) Add(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[rec.Key] = append(m.data[rec.Key], rec.Value)
	m.sizeBytes += rec.size()

	if m.limit > 0 && m.sizeBytes > m.limit {
		return m.spillLocked()
	}
	return nil
}

// Spill vuelca lo que haya en memoria aunque no se haya llegado al limite.
func (m *Aggregator) Spill() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.spillLocked()
}

func (m *Aggregator) spillLocked() error {
	if len(m.data) == 0 {
		return nil
	}
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("error creando directorio de spill: %w", err)
	}
	path := filepath.Join(m.dir, fmt.Sprintf("spill_%s.frames", uuid.NewString()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creando spill: %w", err)
	}
	w := bufio.NewWriter(f)

	for _, k := range sortedKeys(m.data) {
		for _, v := range m.data[k] {
			if _, err := WriteRecord(w, Record{Key: k, Value: v}); err != nil {
				f.Close()
				os.Remove(path)
				return fmt.Errorf("error escribiendo spill: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("error escribiendo spill: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error cerrando spill: %w", err)
	}

	m.spillFiles = append(m.spillFiles, path)
	m.data = make(map[bytearray.IntByteArray][]bytearray.ByteArray) // Reset memoria
	m.sizeBytes = 0
	metrics.Spills.Inc()
	log.WithFields(logrus.Fields{"path": path, "spills": len(m.spillFiles)}).Info("Spill to disk")
	return nil
}

// Groups recarga los spills y devuelve una copia de todos los grupos. Los
// valores de cada clave conservan el orden de llegada. Despues de llamarlo los
// spills ya no existen en disco. Un Add posterior no modifica la copia.
func (m *Aggregator) Groups() (map[bytearray.IntByteArray][]bytearray.ByteArray, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.spillFiles) == 0 {
		return m.snapshotLocked(), nil
	}

	merged := make(map[bytearray.IntByteArray][]bytearray.ByteArray)
	for _, path := range m.spillFiles {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error abriendo spill: %w", err)
		}
		err = NewReader(f).ForEach(func(rec Record) error {
			merged[rec.Key] = append(merged[rec.Key], rec.Value)
			return nil
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("error leyendo spill %s: %w", path, err)
		}
	}
	for k, vals := range m.data {
		merged[k] = append(merged[k], vals...)
	}

	m.removeSpillsLocked()
	m.data = merged
	m.sizeBytes = 0
	for k, vals := range merged {
		for _, v := range vals {
			m.sizeBytes += Record{Key: k, Value: v}.size()
		}
	}
	return m.snapshotLocked(), nil
}

func (m *Aggregator) snapshotLocked() map[bytearray.IntByteArray][]bytearray.ByteArray {
	cp := make(map[bytearray.IntByteArray][]bytearray.ByteArray, len(m.data))
	for k, vals := range m.data {
		cp[k] = append([]bytearray.ByteArray(nil), vals...)
	}
	return cp
}

// Distinct devuelve las claves unicas ordenadas por particion y contenido.
func (m *Aggregator) Distinct() ([]bytearray.IntByteArray, error) {
	groups, err := m.Groups()
	if err != nil {
		return nil, err
	}
	return sortedKeys(groups), nil
}

func (m *Aggregator) SpillCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spillFiles)
}

func (m *Aggregator) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeSpillsLocked()
}

func (m *Aggregator) removeSpillsLocked() {
	for _, p := range m.spillFiles {
		os.Remove(p)
	}
	m.spillFiles = nil
}

func sortedKeys(groups map[bytearray.IntByteArray][]bytearray.ByteArray) []bytearray.IntByteArray {
	keys := make([]bytearray.IntByteArray, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Partition() != keys[j].Partition() {
			return keys[i].Partition() < keys[j].Partition()
		}
		return keys[i].String() < keys[j].String()
	})
	return keys
}
