package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	// dataDogQueueSize bounds how many entries may wait for shipping before
	// new ones are dropped. Logging must never block request handling.
	dataDogQueueSize = 1024

	// dataDogMaxBatch is the largest number of entries sent in one submit call.
	dataDogMaxBatch = 100

	// dataDogFlushInterval is how long a partial batch may wait before it is
	// submitted anyway.
	dataDogFlushInterval = 5 * time.Second

	// dataDogDefaultTimeout applies when no submit timeout is configured.
	dataDogDefaultTimeout = 10 * time.Second

	// dataDogSource is the source tag the entries carry at datadog.
	dataDogSource = "zerolog"
)

// submitFunc ships one batch of log entries.
type submitFunc func(ctx context.Context, items []datadogV2.HTTPLogItem) error

// dataDogWriter ships zerolog output to the DataDog logs intake. Entries are
// queued on Write and submitted in batches from a background goroutine, a
// slow or unreachable intake never stalls the process.
type dataDogWriter struct {
	service  string
	hostname string
	timeout  time.Duration
	entries  chan []byte
	submit   submitFunc
}

// NewDataDogWriter builds a writer that submits log entries to the DataDog
// logs API with the configured credentials and site.
func NewDataDogWriter(cfg DataDog) (io.Writer, error) {
	if cfg.APIKey == "" {
		return nil, ErrDataDogAPIKeyIsEmpty
	}

	apiCfg := datadog.NewConfiguration()
	if len(cfg.Servers) > 0 {
		apiCfg.Servers = cfg.Servers
	}

	api := datadogV2.NewLogsApi(datadog.NewAPIClient(apiCfg))

	authCtx := context.WithValue(context.Background(), datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: cfg.APIKey},
	})

	if cfg.Site != "" {
		authCtx = context.WithValue(authCtx, datadog.ContextServerVariables, map[string]string{
			"site": cfg.Site,
		})
	}

	w := newDataDogWriter(cfg, func(ctx context.Context, items []datadogV2.HTTPLogItem) error {
		_, _, err := api.SubmitLog(ctx, items)

		return err
	})

	go w.run(authCtx)

	return w, nil
}

// newDataDogWriter assembles the writer around a submit function, separated
// from NewDataDogWriter so tests can substitute the API call.
func newDataDogWriter(cfg DataDog, submit submitFunc) *dataDogWriter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = dataDogDefaultTimeout
	}

	hostname, _ := os.Hostname()

	return &dataDogWriter{
		service:  cfg.ServiceName,
		hostname: hostname,
		timeout:  timeout,
		entries:  make(chan []byte, dataDogQueueSize),
		submit:   submit,
	}
}

// Write queues one log entry for shipping. The entry is copied, zerolog
// reuses its buffer after Write returns. When the queue is full the entry is
// dropped.
func (w *dataDogWriter) Write(p []byte) (int, error) {
	entry := make([]byte, len(p))
	copy(entry, p)

	select {
	case w.entries <- entry:
	default:
	}

	return len(p), nil
}

// run drains the entry queue into batches and submits them, either when a
// batch is full or when the flush interval passes with entries waiting.
func (w *dataDogWriter) run(ctx context.Context) {
	ticker := time.NewTicker(dataDogFlushInterval)
	defer ticker.Stop()

	batch := make([]datadogV2.HTTPLogItem, 0, dataDogMaxBatch)

	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-w.entries:
			batch = append(batch, w.logItem(entry))

			if len(batch) >= dataDogMaxBatch {
				w.flush(ctx, batch)
				batch = make([]datadogV2.HTTPLogItem, 0, dataDogMaxBatch)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = make([]datadogV2.HTTPLogItem, 0, dataDogMaxBatch)
			}
		}
	}
}

// logItem wraps one raw zerolog entry in the intake item format.
func (w *dataDogWriter) logItem(entry []byte) datadogV2.HTTPLogItem {
	item := datadogV2.NewHTTPLogItem(string(entry))
	item.SetDdsource(dataDogSource)

	if w.service != "" {
		item.SetService(w.service)
		item.SetDdtags("service:" + w.service)
	}

	if w.hostname != "" {
		item.SetHostname(w.hostname)
	}

	return *item
}

// flush submits one batch. Failures are reported on stderr, going through
// zerolog here would feed the writer its own error entries.
func (w *dataDogWriter) flush(ctx context.Context, batch []datadogV2.HTTPLogItem) {
	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.submit(sendCtx, batch); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "datadog: could not submit %d log entries: %v\n", len(batch), err)
	}
}
