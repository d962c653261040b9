package controllers

import (
	"net/http"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/api/validators"
	"github.com/figpreorders/figorders/internal/varieties"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/logger"
)

type saveVarietiesRequest struct {
	Varieties []varieties.Variety `json:"varieties" validate:"required"`
}

type varietiesResponse struct {
	Varieties []varieties.Variety `json:"varieties"`
}

type varietiesMutation struct {
	Varieties []varieties.Variety `json:"varieties"`
	workspace.Saved
}

func ListVarieties(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, varietiesResponse{Varieties: ws.Varieties()})
	}
}

// AddVariety appends an unsaved stub row.
func AddVariety(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusCreated, varietiesResponse{Varieties: ws.AddVariety()})
	}
}

// SaveVarieties replaces the catalog and commits it.
func SaveVarieties(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saveVarietiesRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saved, result, err := ws.SaveVarieties(r.Context(), req.Varieties)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, varietiesMutation{Varieties: saved, Saved: result})
	}
}

// DeleteVariety removes a row in memory only.
func DeleteVariety(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := validators.PathIndex(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := ws.DeleteVariety(index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, varietiesResponse{Varieties: list})
	}
}
