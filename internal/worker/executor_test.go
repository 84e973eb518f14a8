package worker

import (
	"context"
	"errors"
	"os"
	"testing"

	"crunch-spark/internal/common"
	"crunch-spark/internal/shuffle"
	"crunch-spark/internal/storage"
)

func TestExecutionManager_Submit(t *testing.T) {
	dir := t.TempDir()
	input := createInputFile(t, dir, "in.txt", "a,1\nb,2\na,3\nsolo\n")

	tests := []struct {
		name          string
		task          common.Task
		expectedFiles int
		expectedRecs  int64
		expectErr     error
	}{
		{
			name:          "SHUFFLE_Particionado",
			task:          common.Task{TaskID: "t-shuffle", InputPath: input, OutputType: common.OutputTypeShuffle, NumPartitions: 4, Separator: ","},
			expectedFiles: 4,
			expectedRecs:  4,
		},
		{
			name:          "LOCAL_SPILL_UnArchivo",
			task:          common.Task{TaskID: "t-local", InputPath: input, OutputType: common.OutputTypeLocalSpill, NumPartitions: 4, Separator: ","},
			expectedFiles: 1,
			expectedRecs:  4,
		},
		{
			name:      "Sin_TaskID",
			task:      common.Task{InputPath: input},
			expectErr: ErrInvalidTask,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewShuffleStore()
			exec := NewExecutionManager(1, 0, t.TempDir(), store)

			metas, err := exec.Submit(context.Background(), tt.task)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Fatalf("Esperaba %v, obtuvo %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if len(metas) != tt.expectedFiles {
				t.Fatalf("Esperaba %d archivos, obtuvo %d", tt.expectedFiles, len(metas))
			}

			var total int64
			for _, m := range metas {
				total += m.Records
			}
			if total != tt.expectedRecs {
				t.Errorf("Esperaba %d registros, obtuvo %d", tt.expectedRecs, total)
			}
			if _, err := store.List(tt.task.TaskID); err != nil {
				t.Errorf("la tarea no quedó registrada: %v", err)
			}
		})
	}
}

func TestExecutionManager_DefaultPartitions(t *testing.T) {
	input := createInputFile(t, t.TempDir(), "in.txt", "a\t1\nb\t2\n")

	tests := []struct {
		name          string
		defaults      int
		task          common.Task
		expectedFiles int
	}{
		{name: "Tarea_sin_particiones_usa_config", defaults: 8, task: common.Task{TaskID: "t1", InputPath: input}, expectedFiles: 8},
		{name: "Tarea_con_particiones_gana", defaults: 8, task: common.Task{TaskID: "t2", InputPath: input, NumPartitions: 3}, expectedFiles: 3},
		{name: "LOCAL_SPILL_ignora_config", defaults: 8, task: common.Task{TaskID: "t3", InputPath: input, OutputType: common.OutputTypeLocalSpill}, expectedFiles: 1},
		{name: "Config_sin_valor", defaults: 0, task: common.Task{TaskID: "t4", InputPath: input}, expectedFiles: common.DefaultPartitions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewExecutionManager(1, tt.defaults, t.TempDir(), storage.NewShuffleStore())
			metas, err := exec.Submit(context.Background(), tt.task)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if len(metas) != tt.expectedFiles {
				t.Errorf("Esperaba %d archivos, obtuvo %d", tt.expectedFiles, len(metas))
			}
		})
	}
}

func TestExecutionManager_SameKeySamePartition(t *testing.T) {
	input := createInputFile(t, t.TempDir(), "in.txt", "a\t1\nb\t1\na\t2\n")
	exec := NewExecutionManager(1, 0, t.TempDir(), storage.NewShuffleStore())

	metas, err := exec.Submit(context.Background(), common.Task{TaskID: "t", InputPath: input, NumPartitions: 5})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	want := shuffle.PartitionFor([]byte("a"), 5)
	f, err := os.Open(metas[want].Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	count := 0
	err = shuffle.NewReader(f).ForEach(func(rec shuffle.Record) error {
		if rec.Key.String() == "a" {
			count++
			if rec.Key.Partition() != want {
				t.Errorf("la clave %q lleva partición %d, esperado %d", rec.Key, rec.Key.Partition(), want)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if count != 2 {
		t.Errorf("Esperaba las 2 apariciones de \"a\" en la partición %d, obtuvo %d", want, count)
	}
}

func TestExecutionManager_CanceledContext(t *testing.T) {
	exec := NewExecutionManager(1, 0, t.TempDir(), storage.NewShuffleStore())
	exec.semaphore <- struct{}{} // pool lleno
	defer func() { <-exec.semaphore }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exec.Submit(ctx, common.Task{TaskID: "t", InputPath: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Esperaba context.Canceled, obtuvo %v", err)
	}
}
