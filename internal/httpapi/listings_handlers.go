package httpapi

import (
	"net/http"
	"strconv"

	"yardwatch/internal/store"
)

type ListingsHandler struct {
	DB *store.DB
}

func (h ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, _ = strconv.Atoi(s) // out-of-range values are clamped by the store
	}

	ls, err := h.DB.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if ls == nil {
		ls = []store.Listing{}
	}
	WriteJSON(w, http.StatusOK, ls)
}
