package storage

import (
	"errors"
	"os"
	"sort"
	"sync"

	"crunch-spark/internal/common"
)

var (
	ErrTaskNotFound      = errors.New("tarea desconocida")
	ErrPartitionNotFound = errors.New("particion desconocida")
)

// ShuffleStore registra las particiones que este Worker puede servir.
type ShuffleStore struct {
	mu      sync.RWMutex
	outputs map[string][]common.ShuffleMeta // TaskID -> particiones
}

func NewShuffleStore() *ShuffleStore {
	return &ShuffleStore{
		outputs: make(map[string][]common.ShuffleMeta),
	}
}

// Save reemplaza lo que hubiera para la tarea.
func (s *ShuffleStore) Save(taskID string, metas []common.ShuffleMeta) {
	cp := make([]common.ShuffleMeta, len(metas))
	copy(cp, metas)
	sort.Slice(cp, func(i, j int) bool { return cp[i].PartitionKey < cp[j].PartitionKey })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[taskID] = cp
}

func (s *ShuffleStore) List(taskID string) ([]common.ShuffleMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metas, ok := s.outputs[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	cp := make([]common.ShuffleMeta, len(metas))
	copy(cp, metas)
	return cp, nil
}

func (s *ShuffleStore) Get(taskID string, partition int32) (common.ShuffleMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metas, ok := s.outputs[taskID]
	if !ok {
		return common.ShuffleMeta{}, ErrTaskNotFound
	}
	for _, m := range metas {
		if m.PartitionKey == partition {
			return m, nil
		}
	}
	return common.ShuffleMeta{}, ErrPartitionNotFound
}

func (s *ShuffleStore) Tasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.outputs))
	for id := range s.outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove olvida la tarea y borra sus archivos.
func (s *ShuffleStore) Remove(taskID string) error {
	s.mu.Lock()
	metas, ok := s.outputs[taskID]
	delete(s.outputs, taskID)
	s.mu.Unlock()

	if !ok {
		return ErrTaskNotFound
	}
	for _, m := range metas {
		if err := os.Remove(m.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
