package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "shuffle"

var (
	RecordsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Total records written to partition files.",
		},
	)
	RecordsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Total records fetched from remote partitions.",
		},
	)
	BytesServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_served_total",
			Help:      "Total partition bytes served over HTTP.",
		},
	)
	FetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total failed partition fetches.",
		},
	)
	Spills = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spills_total",
			Help:      "Total aggregator spills to disk.",
		},
	)
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		},
		[]string{"route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RecordsWritten,
		RecordsFetched,
		BytesServed,
		FetchErrors,
		Spills,
		Requests,
	)
}
