package controllers

import (
	"net/http"

	"github.com/angelmondragon/assettrack-backend/api/responses"
	pkgerrors "github.com/angelmondragon/assettrack-backend/pkg/errors"
	"github.com/angelmondragon/assettrack-backend/pkg/logger"
)

// unavailable writes the standard response for a handler built without its service.
func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

func fail(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	responses.WriteError(r.Context(), logg, w, err)
}
