package worker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"crunch-spark/internal/common"
	"crunch-spark/internal/metrics"
	"crunch-spark/internal/storage"
)

// statusCopyError etiqueta los envíos cortados después de responder 200.
const statusCopyError = "copy_error"

// Server expone las particiones de este Worker y recibe tareas de map.
type Server struct {
	WorkerID  string
	MasterURL string // Vacío: no se reporta a nadie
	Executor  *ExecutionManager
	Store     *storage.ShuffleStore
	Client    *http.Client
}

func NewServer(workerID, masterURL string, exec *ExecutionManager, store *storage.ShuffleStore) *Server {
	if workerID == "" {
		workerID = "worker-" + uuid.NewString()
	}
	return &Server{
		WorkerID:  workerID,
		MasterURL: masterURL,
		Executor:  exec,
		Store:     store,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/tasks", s.HandleTaskAssignment)
	r.Get("/shuffle", s.handleListTasks)
	r.Get("/shuffle/{taskID}", s.handleListPartitions)
	r.Get("/shuffle/{taskID}/{partition}", s.handleServePartition)
	r.Delete("/shuffle/{taskID}", s.handleRemoveTask)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"worker_id": s.WorkerID, "status": "ok"})
}

// HandleTaskAssignment ejecuta la tarea de forma síncrona y responde con el reporte.
func (s *Server) HandleTaskAssignment(w http.ResponseWriter, r *http.Request) {
	var task common.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		s.fail(w, "tasks", http.StatusBadRequest, "JSON invalido de la tarea")
		return
	}

	start := time.Now()
	logger := log.WithFields(logrus.Fields{"worker": s.WorkerID, "task": task.TaskID})
	logger.Info("Recibida tarea")

	metas, err := s.Executor.Submit(r.Context(), task)
	report := common.TaskReport{
		TaskID:     task.TaskID,
		WorkerID:   s.WorkerID,
		Timestamp:  start.Unix(),
		DurationMS: time.Since(start).Milliseconds(),
	}

	status := http.StatusOK
	if err != nil {
		report.Status = common.TaskStatusFailure
		report.ErrorMsg = err.Error()
		status = http.StatusInternalServerError
		if errors.Is(err, ErrInvalidTask) {
			status = http.StatusBadRequest
		}
		logger.Errorf("Tarea FALLÓ: %v", err)
	} else {
		report.Status = common.TaskStatusSuccess
		report.ShuffleOutput = metas
		logger.Infof("Tarea OK. Generados %d archivos.", len(metas))
	}

	if s.MasterURL != "" {
		if reportErr := ReportToMaster(s.Client, s.MasterURL, report); reportErr != nil {
			// La tarea ya se ejecutó localmente
			logger.Warnf("ERROR al reportar al Master: %v", reportErr)
		}
	}

	metrics.Requests.WithLabelValues("tasks", strconv.Itoa(status)).Inc()
	writeJSON(w, status, report)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	metrics.Requests.WithLabelValues("shuffle_tasks", "200").Inc()
	writeJSON(w, http.StatusOK, s.Store.Tasks())
}

func (s *Server) handleListPartitions(w http.ResponseWriter, r *http.Request) {
	metas, err := s.Store.List(chi.URLParam(r, "taskID"))
	if err != nil {
		s.fail(w, "shuffle_list", http.StatusNotFound, err.Error())
		return
	}
	metrics.Requests.WithLabelValues("shuffle_list", "200").Inc()
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleServePartition(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	pid, err := strconv.ParseInt(chi.URLParam(r, "partition"), 10, 32)
	if err != nil {
		s.fail(w, "shuffle_partition", http.StatusBadRequest, "particion invalida")
		return
	}
	meta, err := s.Store.Get(taskID, int32(pid))
	if err != nil {
		s.fail(w, "shuffle_partition", http.StatusNotFound, err.Error())
		return
	}

	f, err := os.Open(meta.Path)
	if err != nil {
		s.fail(w, "shuffle_partition", http.StatusInternalServerError, "particion no disponible")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", common.ContentTypeFrames)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	w.WriteHeader(http.StatusOK)
	n, err := io.Copy(w, f)
	metrics.BytesServed.Add(float64(n))
	if err != nil {
		// El status 200 ya salió; solo queda contarlo aparte
		metrics.Requests.WithLabelValues("shuffle_partition", statusCopyError).Inc()
		log.WithFields(logrus.Fields{"task": taskID, "partition": pid, "bytes": n}).Warnf("Envío de partición cortado: %v", err)
		return
	}
	metrics.Requests.WithLabelValues("shuffle_partition", "200").Inc()
}

func (s *Server) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Remove(chi.URLParam(r, "taskID")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrTaskNotFound) {
			status = http.StatusNotFound
		}
		s.fail(w, "shuffle_remove", status, err.Error())
		return
	}
	metrics.Requests.WithLabelValues("shuffle_remove", "204").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, route string, status int, msg string) {
	metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	http.Error(w, msg, status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", common.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("error escribiendo respuesta: %v", err)
	}
}

// ReportToMaster envia el TaskReport de vuelta al Master.
// Es una VARIABLE de función (var) para poder ser sobrescrita en tests.
var ReportToMaster = func(client *http.Client, masterURL string, report common.TaskReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/report", masterURL)
	resp, err := client.Post(url, common.ContentTypeJSON, bytes.NewBuffer(reportJSON))
	if err != nil {
		return fmt.Errorf("no se pudo conectar con el Master en %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("master devolvio status %d", resp.StatusCode)
	}
	return nil
}
