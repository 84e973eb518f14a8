package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crunch-spark/internal/bytearray"
	"crunch-spark/internal/common"
	"crunch-spark/internal/config"
	"crunch-spark/internal/shuffle"
	"crunch-spark/internal/worker"
)

// Envía una tarea de particionado a un worker, descarga todas sus
// particiones y muestra los grupos resultantes.
func main() {
	logrus.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuración inválida: %v", err)
	}

	workerURL := flag.String("worker", "http://localhost:8081", "URL del worker")
	input := flag.String("input", "data/inputs/wordcount.tsv", "Archivo clave<TAB>valor")
	partitions := flag.Int("partitions", cfg.Partitions, "Particiones de salida")
	flag.Parse()

	task := common.Task{
		TaskID:        "task-" + uuid.NewString(),
		InputPath:     *input,
		OutputType:    common.OutputTypeShuffle,
		NumPartitions: *partitions,
	}

	fmt.Println("Enviando tarea al worker...")
	report, err := submitTask(*workerURL, task)
	if err != nil {
		logrus.Fatal(err)
	}
	fmt.Printf("Tarea %s: %s (%d particiones, %d ms)\n", report.TaskID, report.Status, len(report.ShuffleOutput), report.DurationMS)

	var urls []string
	for _, m := range report.ShuffleOutput {
		urls = append(urls, fmt.Sprintf("%s/shuffle/%s/%d", *workerURL, m.TaskID, m.PartitionKey))
	}

	agg := shuffle.NewAggregator(cfg.DataDir, cfg.SpillLimitBytes)
	defer agg.Cleanup()
	if err := worker.FetchAll(context.Background(), nil, urls, agg); err != nil {
		logrus.Fatal(err)
	}

	if err := printGroups(os.Stdout, agg); err != nil {
		agg.Cleanup()
		logrus.Fatal(err)
	}
}

// printGroups escribe una línea por clave, ordenadas por partición y contenido.
func printGroups(out io.Writer, agg *shuffle.Aggregator) error {
	groups, err := agg.Groups()
	if err != nil {
		return err
	}
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
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "[p%d] %-20s valores=%d hash=%d\n", k.Partition(), k, len(groups[k]), k.HashCode()); err != nil {
			return err
		}
	}
	return nil
}

func submitTask(baseURL string, task common.Task) (common.TaskReport, error) {
	var report common.TaskReport
	data, _ := json.Marshal(task)
	resp, err := http.Post(baseURL+"/tasks", common.ContentTypeJSON, bytes.NewBuffer(data))
	if err != nil {
		return report, fmt.Errorf("error contactando worker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return report, fmt.Errorf("worker rechazó la tarea: %s", bytes.TrimSpace(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return report, fmt.Errorf("reporte ilegible: %w", err)
	}
	return report, nil
}
