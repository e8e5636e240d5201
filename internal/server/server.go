// internal/server/server.go
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"folio/internal/logfields"
)

// SocketPath is where pages connect for reload notifications.
const SocketPath = "/__folio/ws"

// Handler serves outputDir under basePath and injects the live-reload
// script into HTML responses.
func Handler(outputDir, basePath string, hub *Hub) http.Handler {
	if basePath == "" {
		basePath = "/"
	}
	files := http.FileServer(http.Dir(outputDir))
	if basePath != "/" {
		files = http.StripPrefix(strings.TrimSuffix(basePath, "/"), files)
	}

	mux := http.NewServeMux()
	mux.Handle(SocketPath, hub)
	mux.Handle(basePath, liveReloadWrapper(files))
	if basePath != "/" {
		mux.Handle("/", http.RedirectHandler(basePath, http.StatusFound))
	}
	return mux
}

// Run serves h on addr until ctx is done.
func Run(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	slog.Info("Serving site", logfields.Output("http://localhost"+addr))

	select {
	case err := <-errc:
		return fmt.Errorf("preview server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		isHTML := strings.HasSuffix(r.URL.Path, ".html") || strings.HasSuffix(r.URL.Path, "/")
		if !isHTML {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter()
		next.ServeHTTP(iw, r)

		for key, values := range iw.header {
			if key == "Content-Length" {
				continue
			}
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		body := iw.body.Bytes()
		if iw.statusCode == http.StatusOK {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(iw.statusCode)
		w.Write(body)
	})
}

// interceptingWriter buffers a response so the body can be rewritten.
type interceptingWriter struct {
	body       bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter() *interceptingWriter {
	return &interceptingWriter{header: make(http.Header), statusCode: http.StatusOK}
}

func (iw *interceptingWriter) Header() http.Header { return iw.header }

func (iw *interceptingWriter) Write(b []byte) (int, error) { return iw.body.Write(b) }

func (iw *interceptingWriter) WriteHeader(statusCode int) { iw.statusCode = statusCode }

const liveReloadScript = `
<script>
  (function() {
    var proto = window.location.protocol === "https:" ? "wss://" : "ws://";
    var socket = new WebSocket(proto + window.location.host + "` + SocketPath + `");
    socket.onmessage = function(event) {
      if (event.data === "` + ReloadMessage + `") {
        window.location.reload();
      }
    };
    socket.onerror = function() {
      console.error("Live reload connection lost. Restart 'folio serve'.");
    };
  })();
</script>
`
