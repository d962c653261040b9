package controllers

import (
	"net/http"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/internal/workspace"
)

// Status reports collection sizes, linked handles, bootstrap sources and warnings.
func Status(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, ws.Status())
	}
}

// Stats returns the dashboard aggregates.
func Stats(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, ws.Stats())
	}
}
