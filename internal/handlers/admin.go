package handlers

import (
	"net/http"

	"github.com/mvaldes/almacen/internal/reqlock"
	pkghttp "github.com/mvaldes/almacen/pkg/http"
)

// AdminHandler exposes operational introspection endpoints
type AdminHandler struct {
	guards map[string]*reqlock.Guard
}

// NewAdminHandler creates an AdminHandler over the named dedup guards
func NewAdminHandler(guards map[string]*reqlock.Guard) *AdminHandler {
	return &AdminHandler{guards: guards}
}

// GuardStats returns a snapshot of every dedup guard's live lock table
func (h *AdminHandler) GuardStats(w http.ResponseWriter, r *http.Request) {
	snapshot := make(map[string]reqlock.Stats, len(h.guards))
	for name, guard := range h.guards {
		snapshot[name] = guard.Stats()
	}
	pkghttp.WriteJSON(w, http.StatusOK, snapshot)
}
