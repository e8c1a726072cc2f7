package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"goa.design/clue/debug"
	"goa.design/clue/health"
	"goa.design/clue/log"
	goahttp "goa.design/goa/v3/http"

	"github.com/beedev/recommenderv2/apitypes"
	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/orchestrator"
	"github.com/beedev/recommenderv2/configurator/store"
)

// Bounds for the archive listing endpoint.
const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// handleHTTPServer mounts the configurator endpoints on a goa muxer and
// manages the server lifecycle: it starts the listener in its own goroutine
// and shuts it down gracefully when ctx is canceled.
func handleHTTPServer(ctx context.Context, addr string, svc *orchestrator.Orchestrator, archive store.Archive, checker health.Checker, wg *sync.WaitGroup, errc chan error, dbg bool) {
	// Build the service HTTP request multiplexer and mount debug and
	// profiler endpoints in debug mode.
	var mux goahttp.Muxer
	{
		mux = goahttp.NewMuxer()
		if dbg {
			// Mount pprof handlers for memory profiling under /debug/pprof.
			debug.MountPprofHandlers(debug.Adapt(mux))
			// Mount /debug endpoint to enable or disable debug logs at runtime.
			debug.MountDebugLogEnabler(debug.Adapt(mux))
		}
	}

	mounts := []struct {
		method  string
		pattern string
		handler http.HandlerFunc
	}{
		{"POST", "/configurator/message", handleMessage(svc)},
		{"GET", "/configurator/state/{session_id}", handleState(svc, mux)},
		{"GET", "/configurator/archive/recent", handleArchiveRecent(archive)},
		{"GET", "/configurator/archive/stats", handleArchiveStats(archive)},
		{"GET", "/health", health.Handler(checker)},
	}
	for _, m := range mounts {
		mux.Handle(m.method, m.pattern, m.handler)
		log.Printf(ctx, "HTTP %s %s mounted", m.method, m.pattern)
	}

	var handler http.Handler = mux
	if dbg {
		// Log query and response bodies if debug logs are enabled.
		handler = debug.HTTP()(handler)
	}
	handler = log.HTTP(ctx)(handler)

	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: time.Second * 60}

	(*wg).Add(1)
	go func() {
		defer (*wg).Done()

		// Start HTTP server in a separate goroutine.
		go func() {
			log.Printf(ctx, "HTTP server listening on %q", addr)
			errc <- srv.ListenAndServe()
		}()

		<-ctx.Done()
		log.Printf(ctx, "shutting down HTTP server at %q", addr)

		// Shutdown gracefully with a 30s timeout.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf(ctx, "failed to shutdown: %v", err)
		}
	}()
}

// handleMessage runs one conversational turn. The orchestrator renders every
// categorized failure as a prompt, so the only transport errors are a
// malformed body, a busy session and session-store outages.
func handleMessage(svc *orchestrator.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload apitypes.MessageRequest
		if err := goahttp.RequestDecoder(r).Decode(&payload); err != nil {
			respondError(w, r, http.StatusBadRequest, "request body must be a JSON message")
			return
		}
		resp, err := svc.Handle(r.Context(), payload.ToRequest())
		if err != nil {
			switch {
			case errors.Is(err, store.ErrSessionBusy):
				respondError(w, r, http.StatusConflict, "another turn is in progress for this session")
			case errors.Is(err, store.ErrUnavailable):
				respondError(w, r, http.StatusServiceUnavailable, "session store unavailable")
			default:
				log.Errorf(r.Context(), err, "turn failed")
				respondError(w, r, http.StatusInternalServerError, "internal error")
			}
			return
		}
		respond(w, r, http.StatusOK, apitypes.FromResponse(resp))
	}
}

// handleState returns a read-only session snapshot. It never resets the
// session TTL and never mutates.
func handleState(svc *orchestrator.Orchestrator, mux goahttp.Muxer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["session_id"]
		if id == "" {
			respondError(w, r, http.StatusBadRequest, "session_id is required")
			return
		}
		resp, err := svc.State(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, configurator.ErrSessionExpired):
				respondError(w, r, http.StatusNotFound, "session not found or expired")
			case errors.Is(err, store.ErrUnavailable):
				respondError(w, r, http.StatusServiceUnavailable, "session store unavailable")
			default:
				log.Errorf(r.Context(), err, "session snapshot failed")
				respondError(w, r, http.StatusInternalServerError, "internal error")
			}
			return
		}
		respond(w, r, http.StatusOK, apitypes.FromResponse(resp))
	}
}

// handleArchiveRecent lists the most recently completed sessions, newest
// first. The limit query parameter caps the page at maxRecentLimit.
func handleArchiveRecent(archive store.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if archive == nil {
			respondError(w, r, http.StatusNotFound, "archive not configured")
			return
		}
		limit := defaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respondError(w, r, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}
		if limit > maxRecentLimit {
			limit = maxRecentLimit
		}
		records, err := archive.Recent(r.Context(), limit)
		if err != nil {
			log.Errorf(r.Context(), err, "archive listing failed")
			respondError(w, r, http.StatusServiceUnavailable, "archive unavailable")
			return
		}
		out := apitypes.ArchiveRecentResponse{Records: make([]apitypes.ArchiveRecord, 0, len(records))}
		for _, rec := range records {
			out.Records = append(out.Records, apitypes.FromRecord(rec))
		}
		respond(w, r, http.StatusOK, out)
	}
}

// handleArchiveStats reports archive-wide aggregates.
func handleArchiveStats(archive store.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if archive == nil {
			respondError(w, r, http.StatusNotFound, "archive not configured")
			return
		}
		stats, err := archive.Stats(r.Context())
		if err != nil {
			log.Errorf(r.Context(), err, "archive stats failed")
			respondError(w, r, http.StatusServiceUnavailable, "archive unavailable")
			return
		}
		respond(w, r, http.StatusOK, apitypes.FromStats(stats))
	}
}

// respond writes body with goa's content negotiation.
func respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	ctx := context.WithValue(r.Context(), goahttp.AcceptTypeKey, r.Header.Get("Accept"))
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(body); err != nil {
		log.Printf(r.Context(), "encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	respond(w, r, status, apitypes.ErrorResponse{Error: msg})
}
