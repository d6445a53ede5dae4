package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/services"
	"github.com/itemmanager/apiserver/internal/validation"
	"github.com/itemmanager/apiserver/types"
)

const msgJSONRequired = "JSON data is required"

// ItemHandler provides HTTP handlers for items.
type ItemHandler struct {
	itemService *services.ItemService
	log         *logging.Logger
}

func NewItemHandler(itemService *services.ItemService, log *logging.Logger) *ItemHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &ItemHandler{itemService: itemService, log: log}
}

// ItemRouter registers item routes on the given router. Every route requires
// authMiddleware to pass.
func ItemRouter(r chi.Router, itemService *services.ItemService, authMiddleware func(http.Handler) http.Handler, log *logging.Logger) {
	handler := NewItemHandler(itemService, log)

	r.Use(authMiddleware)
	r.Get("/", handler.ListItems)
	r.Post("/", handler.CreateItem)
	r.Route("/{itemID:[0-9]+}", func(r chi.Router) {
		r.Get("/", handler.GetItem)
		r.Put("/", handler.UpdateItem)
		r.Delete("/", handler.DeleteItem)
	})
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemService.List(r.Context())
	if err != nil {
		writeInternalError(h.log, w, r, "Failed to fetch items", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgJSONRequired)
		return
	}
	if errs := validation.Item(fields, false); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	name, _ := validation.String(fields, "name")
	description, _ := validation.String(fields, "description")
	price, _ := validation.ParsePrice(fields["price"])

	item, err := h.itemService.Create(r.Context(), types.Item{
		Name:        name,
		Description: description,
		Price:       price,
	})
	if err != nil {
		writeInternalError(h.log, w, r, "Failed to create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.itemService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeItemNotFound(w, id)
			return
		}
		writeInternalError(h.log, w, r, "Failed to fetch item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UpdateItem replaces the fields present in the body. The item must exist
// before the body is validated.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	fields, ok := decodeFields(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgJSONRequired)
		return
	}

	if _, err := h.itemService.Get(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeItemNotFound(w, id)
			return
		}
		writeInternalError(h.log, w, r, "Failed to update item", err)
		return
	}

	if errs := validation.Item(fields, true); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	item, err := h.itemService.Update(r.Context(), id, itemPatch(fields))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeItemNotFound(w, id)
			return
		}
		writeInternalError(h.log, w, r, "Failed to update item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	if err := h.itemService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeItemNotFound(w, id)
			return
		}
		writeInternalError(h.log, w, r, "Failed to delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// itemPatch builds a patch from validated fields. A null description
// clears it.
func itemPatch(fields validation.Fields) types.ItemPatch {
	var patch types.ItemPatch
	if name, ok := validation.String(fields, "name"); ok {
		patch.Name = types.Some(name)
	}
	if _, ok := fields["description"]; ok {
		description, _ := validation.String(fields, "description")
		patch.Description = types.Some(description)
	}
	if raw, ok := fields["price"]; ok {
		if price, valid := validation.ParsePrice(raw); valid {
			patch.Price = types.Some(price)
		}
	}
	return patch
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "itemID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with id %s not found", raw))
		return 0, false
	}
	return id, true
}

func writeItemNotFound(w http.ResponseWriter, id int64) {
	writeError(w, http.StatusNotFound, fmt.Sprintf("Item with id %d not found", id))
}
