package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jobs":        s.orchestrator.Counters(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"started":     humanize.Time(s.started),
		"memory": map[string]string{
			"alloc": humanize.Bytes(mem.Alloc),
			"sys":   humanize.Bytes(mem.Sys),
		},
		"goroutines": humanize.Comma(int64(runtime.NumGoroutine())),
	})
}
