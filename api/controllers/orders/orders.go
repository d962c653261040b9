package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/api/validators"
	internalorders "github.com/figpreorders/figorders/internal/orders"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/figpreorders/figorders/pkg/pagination"
)

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type listResponse struct {
	Orders     []internalorders.Order `json:"orders"`
	Count      int                    `json:"count"`
	NextCursor string                 `json:"nextCursor,omitempty"`
}

type orderMutation struct {
	Order   internalorders.Order `json:"order"`
	Created bool                 `json:"created"`
	workspace.Saved
}

type deleteResponse struct {
	ID string `json:"id"`
	workspace.Saved
}

// List filters orders by free-text q and status. An empty or "all" status
// matches every order. Passing limit or cursor pages the result; count is
// always the number of matches.
func List(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := validators.SanitizeString(r.URL.Query().Get("q"), validators.MaxQueryLen)
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		if status != "" && status != enums.OrderStatusAll {
			if _, err := enums.ParseOrderStatus(status); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown status filter").
					WithDetails(map[string]string{"status": "must be all or a known status"}))
				return
			}
		}
		list := ws.ListOrders(query, status)
		if !paged(r) {
			responses.WriteSuccess(w, listResponse{Orders: list, Count: len(list)})
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := pagination.Paginate(list, func(o internalorders.Order) string { return o.ID }, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{Orders: page.Items, Count: len(list), NextCursor: page.NextCursor})
	}
}

func Get(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := ws.GetOrder(orderID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// SetStatus changes only the status of an order.
func SetStatus(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := orderID(r)
		ctx := logg.WithOrderID(r.Context(), id)
		var req statusRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(strings.TrimSpace(req.Status))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status").
				WithDetails(map[string]string{"status": "must be a known status"}))
			return
		}
		order, saved, err := ws.SetStatus(ctx, id, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderMutation{Order: order, Saved: saved})
	}
}

// Delete removes an order; the caller must pass confirm=true.
func Delete(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := orderID(r)
		ctx := logg.WithOrderID(r.Context(), id)
		confirmed, err := validators.ParseQueryBool(r, "confirm")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		saved, err := ws.DeleteOrder(ctx, id, confirmed)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(ctx, "order deleted")
		responses.WriteSuccess(w, deleteResponse{ID: id, Saved: saved})
	}
}

// BeginEdit loads an order into the draft.
func BeginEdit(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := ws.BeginEdit(orderID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

func paged(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("limit") || q.Has("cursor")
}

func orderID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "orderId"))
}
