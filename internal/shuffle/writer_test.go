package shuffle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_PartitionsByKey(t *testing.T) {
	base := filepath.Join(t.TempDir(), "stage1", "map")
	w, err := NewWriter(base, "task-1", 3)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	records := []Record{
		NewRecord(0, []byte("a"), []byte("1")),
		NewRecord(1, []byte("b"), []byte("1")),
		NewRecord(1, []byte("b"), []byte("2")),
		NewRecord(5, []byte("c"), []byte("1")), // 5 mod 3 = 2
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	metas, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("Esperaba 3 particiones, obtuvo %d", len(metas))
	}

	wantRecords := []int64{1, 2, 1}
	for i, m := range metas {
		if m.PartitionKey != int32(i) || m.TaskID != "task-1" {
			t.Errorf("meta %d inesperada: %+v", i, m)
		}
		if m.Records != wantRecords[i] {
			t.Errorf("particion %d: esperaba %d registros, obtuvo %d", i, wantRecords[i], m.Records)
		}
		info, err := os.Stat(m.Path)
		if err != nil {
			t.Fatalf("no existe %s: %v", m.Path, err)
		}
		if info.Size() != m.Size {
			t.Errorf("particion %d: Size=%d pero el archivo mide %d", i, m.Size, info.Size())
		}
	}

	f, err := os.Open(metas[2].Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	got, err := NewReader(f).Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Key.Partition() != 5 || got.Key.String() != "c" {
		t.Errorf("la clave debe conservar su particion original, obtuvo (%d, %q)", got.Key.Partition(), got.Key)
	}
}

func TestWriter_ClosedAndAbort(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(base, "task-2", 2)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Write(NewRecord(0, []byte("x"), nil)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Abort()

	if err := w.Write(NewRecord(0, []byte("x"), nil)); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Esperaba ErrWriterClosed, obtuvo %v", err)
	}
	if _, err := os.Stat(base + "_task-2_part_0"); !os.IsNotExist(err) {
		t.Errorf("Abort no borro los archivos: %v", err)
	}
}
