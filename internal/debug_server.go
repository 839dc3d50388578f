package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultInspectPrefix = "obj:"

// NewDebugMux serves the metrics and a plain text view of the store keys.
func NewDebugMux(db *badger.DB, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultInspectPrefix
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Key", "Size", "Version"})
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)

		err := db.View(func(txn *badger.Txn) error {
			options := badger.DefaultIteratorOptions
			options.PrefetchValues = false
			it := txn.NewIterator(options)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				table.Append([]string{
					string(item.Key()),
					strconv.FormatInt(item.ValueSize(), 10),
					strconv.FormatUint(item.Version(), 10),
				})
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		table.Render()
	})
	return mux
}

// StartDebugServer serves the mux until ctx is done.
func StartDebugServer(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) {
	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Info("Debug server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Debug server stopped", "error", err)
		}
	}()
}
