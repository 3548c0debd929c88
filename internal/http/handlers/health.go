package handlers

import (
	"net/http"
)

// Health answers liveness probes. It deliberately avoids touching the
// database so a degraded pool does not take the process out of rotation.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "thumbnail-genie",
	})
}
