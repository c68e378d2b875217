package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
	"github.com/devrahi999/ihntopup/internal/transport"
)

type Handler struct {
	transport.BaseHandler
	Service *Service
	Logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: *transport.NewBaseHandler(logger),
		Service:     service,
		Logger:      logger,
	}
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Categories(r.Context(), false)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) ListPacks(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	packs, err := h.Service.Packs(r.Context(), categoryID, false)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, packs)
}

func (h *Handler) GetPack(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid pack ID")
		return
	}

	pack, err := h.Service.GetPack(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, pack)
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Service.Cards(r.Context(), false)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cards)
}

func (h *Handler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.Service.Banners(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, banners)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c catalog.Category
	if err := h.decode(r, &c); err != nil {
		h.HandleError(w, err)
		return
	}
	if err := h.Service.CreateCategory(r.Context(), &c); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var c catalog.Category
	if err := h.decode(r, &c); err != nil {
		h.HandleError(w, err)
		return
	}
	c.ID = id

	if err := h.Service.UpdateCategory(r.Context(), &c); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "invalid category ID", h.Service.DeleteCategory)
}

func (h *Handler) CreatePack(w http.ResponseWriter, r *http.Request) {
	var p catalog.DiamondPack
	if err := h.decode(r, &p); err != nil {
		h.HandleError(w, err)
		return
	}
	if err := h.Service.CreatePack(r.Context(), &p); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePack(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid pack ID")
		return
	}

	var p catalog.DiamondPack
	if err := h.decode(r, &p); err != nil {
		h.HandleError(w, err)
		return
	}
	p.ID = id

	if err := h.Service.UpdatePack(r.Context(), &p); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePack(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "invalid pack ID", h.Service.DeletePack)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var c catalog.TopupCard
	if err := h.decode(r, &c); err != nil {
		h.HandleError(w, err)
		return
	}
	if err := h.Service.CreateCard(r.Context(), &c); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid card ID")
		return
	}

	var c catalog.TopupCard
	if err := h.decode(r, &c); err != nil {
		h.HandleError(w, err)
		return
	}
	c.ID = id

	if err := h.Service.UpdateCard(r.Context(), &c); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "invalid card ID", h.Service.DeleteCard)
}

func (h *Handler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var b catalog.Banner
	if err := h.decode(r, &b); err != nil {
		h.HandleError(w, err)
		return
	}
	if err := h.Service.CreateBanner(r.Context(), &b); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, "invalid banner ID", h.Service.DeleteBanner)
}

func (h *Handler) pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Error("catalog: invalid request body", "error", err, "path", r.URL.Path)
		return errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed)
	}
	return nil
}

func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request, badIDMsg string, remove func(ctx context.Context, id int64) error) {
	id, err := h.pathID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, badIDMsg)
		return
	}
	if err := remove(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
