package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"crunch-spark/internal/metrics"
	"crunch-spark/internal/shuffle"
)

// Fetch descarga una partición remota y la agrega registro a registro.
// Devuelve cuántos registros agregó. Si el stream se corta o llega corrupto a
// mitad de camino, los registros anteriores al error ya están en agg: el
// llamador debe descartar el agregador (Cleanup) o reintentar sobre uno nuevo.
func Fetch(ctx context.Context, client *http.Client, url string, agg *shuffle.Aggregator) (int, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		metrics.FetchErrors.Inc()
		return 0, fmt.Errorf("error descargando %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.Inc()
		return 0, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}

	n := 0
	err = shuffle.NewReader(resp.Body).ForEach(func(rec shuffle.Record) error {
		n++
		metrics.RecordsFetched.Inc()
		return agg.Add(rec)
	})
	if err != nil {
		metrics.FetchErrors.Inc()
		return n, fmt.Errorf("error leyendo %s: %w", url, err)
	}
	return n, nil
}

// FetchAll descarga todas las URLs en paralelo sobre el mismo agregador.
// Con cualquier error el agregador queda con datos parciales, igual que en Fetch.
func FetchAll(ctx context.Context, client *http.Client, urls []string, agg *shuffle.Aggregator) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, len(urls))
	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Fetch(ctx, client, url, agg); err != nil {
				log.WithField("url", url).Warnf("Fallo descargando parte del shuffle: %v", err)
				errs[i] = err
				cancel()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}
