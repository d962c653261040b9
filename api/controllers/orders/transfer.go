package orders

import (
	"net/http"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/api/validators"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/logger"
)

type importResponse struct {
	Imported int `json:"imported"`
	workspace.Saved
}

// Export downloads every order, or the comma separated ids selection.
func Export(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := ws.Export(validators.ParseQueryList(r, "ids"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, doc.Filename, doc.Body)
	}
}

// Import replaces the whole collection with the uploaded JSON array.
func Import(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes)
		count, saved, err := ws.Import(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithField(r.Context(), "imported", count)
		logg.Info(ctx, "orders imported")
		responses.WriteSuccess(w, importResponse{Imported: count, Saved: saved})
	}
}
