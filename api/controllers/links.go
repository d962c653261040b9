package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/api/validators"
	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/logger"
)

type linkRequest struct {
	Path    string `json:"path" validate:"required,max=4096"`
	Discard bool   `json:"discard"`
}

type linksResponse struct {
	Enabled bool                `json:"enabled"`
	Links   []linkedfile.Handle `json:"links"`
}

func ListLinks(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, linksResponse{Enabled: ws.Status().LinkingEnabled, Links: ws.Links()})
	}
}

// Link opens a file under the configured root for the collection in the path
// and adopts its content.
func Link(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req linkRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithCollection(r.Context(), string(kind))
		res, err := ws.Link(ctx, kind, strings.TrimSpace(req.Path), req.Discard)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func Unlink(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		removed, err := ws.Unlink(kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"collection": kind, "unlinked": removed})
	}
}

func parseKind(r *http.Request) (enums.CollectionKind, error) {
	kind, err := enums.ParseCollectionKind(strings.TrimSpace(chi.URLParam(r, "kind")))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown collection").
			WithDetails(map[string]any{"kind": enums.CollectionKinds()})
	}
	return kind, nil
}
