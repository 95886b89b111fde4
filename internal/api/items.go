package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campusfound/campusfound/internal/imaging"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/store"
	"github.com/campusfound/campusfound/internal/workflow"
)

// ItemsHandler handles item posting endpoints.
type ItemsHandler struct {
	DB       *sql.DB
	Workflow *workflow.Service
}

type createItemRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (req *createItemRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)

	if req.Title == "" || req.Category == "" || req.Location == "" {
		return model.ValidationError("title, category, and location required")
	}
	if !model.ValidItemType(req.Type) {
		return model.ValidationError("type must be lost or found")
	}
	return nil
}

// updateItemRequest changes only the fields that are present.
type updateItemRequest struct {
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
}

func (req *updateItemRequest) validate() error {
	for _, f := range []*string{req.Title, req.Category, req.Type, req.Description, req.Location, req.Status} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	for _, f := range []*string{req.Title, req.Category, req.Location} {
		if f != nil && *f == "" {
			return model.ValidationError("title, category, and location cannot be empty")
		}
	}
	if req.Type != nil && !model.ValidItemType(*req.Type) {
		return model.ValidationError("type must be lost or found")
	}
	if req.Status != nil && !model.ValidItemStatus(*req.Status) {
		return model.ValidationError("status must be active, claimed, or resolved")
	}
	return nil
}

// apply copies the present fields onto item.
func (req *updateItemRequest) apply(item *model.Item) {
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Type != nil {
		item.Type = *req.Type
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
}

type contactRequest struct {
	Message string `json:"message"`
}

func (req *contactRequest) validate() error {
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return model.ValidationError("Please provide a message")
	}
	return nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Type:     strings.TrimSpace(q.Get("type")),
		Category: strings.TrimSpace(q.Get("category")),
		Status:   strings.TrimSpace(q.Get("status")),
	}
	if filter.Type != "" && !model.ValidItemType(filter.Type) {
		jsonError(w, http.StatusBadRequest, "invalid type filter")
		return
	}
	if filter.Status != "" && !model.ValidItemStatus(filter.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeItems(w, items)
}

// Mine handles GET /api/user/items.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItemsByOwner(r.Context(), h.DB, callerFrom(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeItems(w, items)
}

func writeItems(w http.ResponseWriter, items []model.Item) {
	if items == nil {
		items = []model.Item{}
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	caller := callerFrom(r)
	item, err := store.CreateItem(r.Context(), h.DB, &model.Item{
		Title:       req.Title,
		Category:    req.Category,
		Type:        req.Type,
		Description: req.Description,
		Location:    req.Location,
		OwnerID:     caller.ID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item created", "item_id", item.ID, "owner_id", caller.ID, "type", item.Type)
	jsonSuccess(w, http.StatusCreated, map[string]any{"item": item})
}

// getItem loads the item named by the {id} path parameter. On failure the
// error response is already written.
func (h *ItemsHandler) getItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found")
		return nil, false
	}
	return item, true
}

// getOwnedItem is getItem restricted to the item owner and admins.
func (h *ItemsHandler) getOwnedItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, ok := h.getItem(w, r)
	if !ok {
		return nil, false
	}
	caller := callerFrom(r)
	if item.OwnerID != caller.ID && !caller.IsAdmin() {
		writeError(w, r, errForbidden)
		return nil, false
	}
	return item, true
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getItem(w, r)
	if !ok {
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"item": item})
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getOwnedItem(w, r)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.apply(item)
	if err := store.UpdateItem(r.Context(), h.DB, item); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Status != nil && *req.Status != item.Status {
		if err := store.UpdateItemStatus(r.Context(), h.DB, item.ID, *req.Status); err != nil {
			writeError(w, r, err)
			return
		}
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"item": updated})
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getOwnedItem(w, r)
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item deleted", "item_id", item.ID, "by", callerFrom(r).ID)
	jsonSuccess(w, http.StatusOK, map[string]any{"message": "Item deleted successfully"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.getOwnedItem(w, r)
	if !ok {
		return
	}

	result, ok := readImageUpload(w, r, imaging.Process)
	if !ok {
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, item.ID, result.Data, result.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonSuccess(w, http.StatusOK, map[string]any{"message": "image uploaded", "item": updated})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeImage(w, data, mime)
}

// Contact handles POST /api/items/{id}/contact.
func (h *ItemsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req contactRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Workflow.ContactOwner(r.Context(), callerFrom(r), id, req.Message)
	var delivery *workflow.DeliveryError
	if errors.As(err, &delivery) {
		// The caller still gets the owner's details to reach them directly.
		jsonResponse(w, http.StatusInternalServerError, map[string]any{
			"success":  false,
			"message":  model.MessageOf(err),
			"fallback": delivery.Fallback,
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonSuccess(w, http.StatusOK, map[string]any{
		"message": "Your message has been sent successfully to the item owner",
		"data":    result,
	})
}
