package handlers

import (
	"net/http"

	"github.com/mvaldes/almacen/internal/database"
	"github.com/mvaldes/almacen/internal/services"
	pkghttp "github.com/mvaldes/almacen/pkg/http"
)

// writeResult maps a transactional Result onto an HTTP response. Successful
// results are written as-is with the given status; known rollback reasons
// map to client errors, and anything else is an internal fault whose detail
// stays out of the response body.
func writeResult(w http.ResponseWriter, successStatus int, result database.Result) {
	if result.Success {
		pkghttp.WriteJSON(w, successStatus, result)
		return
	}

	switch result.Message {
	case services.ReasonUserNotFound, services.ReasonProductNotFound:
		pkghttp.WriteNotFound(w, result.Message)
	case services.ReasonEmailTaken:
		pkghttp.WriteConflict(w, result.Message)
	case services.ReasonInsufficientStock:
		// keep the envelope: the payload carries current_stock / requested
		pkghttp.WriteJSON(w, http.StatusConflict, result)
	case services.ReasonNegativeStock, services.ReasonInvalidOperation:
		pkghttp.WriteBadRequest(w, result.Message)
	default:
		pkghttp.WriteInternalError(w, "internal server error")
	}
}
