package orders

import (
	"net/http"

	"github.com/figpreorders/figorders/api/responses"
	"github.com/figpreorders/figorders/api/validators"
	internalorders "github.com/figpreorders/figorders/internal/orders"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/enums"
	"github.com/figpreorders/figorders/pkg/logger"
)

type addItemRequest struct {
	Variety   string   `json:"variety" validate:"required"`
	Quantity  int      `json:"quantity" validate:"gt=0"`
	UnitPrice *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
}

// submitRequest is the order form. Line items come from the draft.
type submitRequest struct {
	CustomerName   string  `json:"customerName"`
	Phone          string  `json:"phone"`
	City           string  `json:"city"`
	Address        string  `json:"address"`
	Notes          string  `json:"notes"`
	Status         string  `json:"status"`
	DeliveryMethod string  `json:"deliveryMethod"`
	DepositDZD     float64 `json:"depositDZD"`
}

func (s submitRequest) input() internalorders.Input {
	return internalorders.Input{
		CustomerName:   s.CustomerName,
		Phone:          s.Phone,
		City:           s.City,
		Address:        s.Address,
		Notes:          s.Notes,
		Status:         enums.OrderStatus(s.Status),
		DeliveryMethod: s.DeliveryMethod,
		DepositDZD:     s.DepositDZD,
	}
}

func DraftGet(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, ws.Draft())
	}
}

// DraftAddItem appends a line. Without unitPrice the catalog price applies.
func DraftAddItem(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := ws.AddDraftItem(req.Variety, req.Quantity, req.UnitPrice)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, state)
	}
}

func DraftRemoveItem(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := validators.PathIndex(r, "index")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		state, err := ws.RemoveDraftItem(index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// DraftReset discards the draft and leaves editing mode.
func DraftReset(ws *workspace.Workspace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, ws.ResetDraft())
	}
}

// DraftSubmit creates a new order, or saves the order being edited.
func DraftSubmit(ws *workspace.Workspace, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, created, saved, err := ws.SubmitDraft(r.Context(), req.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logg.WithOrderID(r.Context(), order.ID)
		if created {
			logg.Info(ctx, "order created")
			responses.WriteSuccessStatus(w, http.StatusCreated, orderMutation{Order: order, Created: true, Saved: saved})
			return
		}
		logg.Info(ctx, "order updated")
		responses.WriteSuccess(w, orderMutation{Order: order, Saved: saved})
	}
}
