package sales

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ballbuild/pos/internal/platform/httpx"
	"github.com/ballbuild/pos/internal/shared"
)

// Handler exposes the cart, checkout and sale history.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	shopName string
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, shopName string) *Handler {
	return &Handler{logger: logger, service: service, shopName: shopName}
}

// MountCartRoutes registers the draft-sale endpoints.
func (h *Handler) MountCartRoutes(r chi.Router) {
	r.Get("/", h.cart)
	r.Post("/items", h.addItem)
	r.Put("/items/{index}", h.updateItem)
	r.Delete("/items/{index}", h.removeItem)
	r.Put("/customer", h.selectCustomer)
	r.Delete("/", h.clear)
	r.Post("/checkout", h.checkout)
}

// MountSalesRoutes registers the history and reporting endpoints.
func (h *Handler) MountSalesRoutes(r chi.Router) {
	r.Get("/", h.history)
	r.Get("/report", h.report)
	r.Get("/{id}/receipt", h.receipt)
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Cart())
}

type addItemRequest struct {
	ProductID int `json:"productId"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	view, err := h.service.AddProduct(req.ProductID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type updateItemRequest struct {
	Quantity  *int     `json:"quantity"`
	Unit      *string  `json:"unit"`
	PriceType *string  `json:"priceType"`
	Discount  *float64 `json:"discount"`
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invalid line index")
		return
	}
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}

	var view CartView
	apply := func(fn func() (CartView, error)) bool {
		v, err := fn()
		if err != nil {
			httpx.RespondError(w, err)
			return false
		}
		view = v
		return true
	}

	if req.Quantity != nil && !apply(func() (CartView, error) { return h.service.SetQuantity(index, *req.Quantity) }) {
		return
	}
	if req.Unit != nil && !apply(func() (CartView, error) { return h.service.SetUnit(index, *req.Unit) }) {
		return
	}
	if req.PriceType != nil && !apply(func() (CartView, error) { return h.service.SetPriceType(index, *req.PriceType) }) {
		return
	}
	if req.Discount != nil && !apply(func() (CartView, error) { return h.service.SetDiscount(index, *req.Discount) }) {
		return
	}
	if req.Quantity == nil && req.Unit == nil && req.PriceType == nil && req.Discount == nil {
		view = h.service.Cart()
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invalid line index")
		return
	}
	view, err := h.service.RemoveLine(index)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

type selectCustomerRequest struct {
	CustomerID *int `json:"customerId"`
}

func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) {
	var req selectCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	view, err := h.service.SelectCustomer(req.CustomerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.ClearCart())
}

type checkoutResponse struct {
	Sale    Sale   `json:"sale"`
	Receipt string `json:"receipt"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	sale, err := h.service.Checkout(sess.UserID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("sale recorded",
		slog.Int("id", sale.ID),
		slog.Float64("total", sale.Total),
		slog.String("seller", sale.Seller.Username))
	httpx.JSON(w, http.StatusCreated, checkoutResponse{Sale: sale, Receipt: Receipt(h.shopName, sale)})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	sales := h.service.History()
	if sales == nil {
		sales = []Sale{}
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	from, ok := parseDateParam(w, r.URL.Query().Get("from"), false)
	if !ok {
		return
	}
	to, ok := parseDateParam(w, r.URL.Query().Get("to"), true)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Report(from, to))
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invalid sale id")
		return
	}
	for _, sale := range h.service.History() {
		if sale.ID == id {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(Receipt(h.shopName, sale)))
			return
		}
	}
	httpx.RespondError(w, shared.ErrNotFound)
}

// parseDateParam parses a YYYY-MM-DD query value. End dates cover the
// whole day.
func parseDateParam(w http.ResponseWriter, value string, endOfDay bool) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "dates must be YYYY-MM-DD")
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}
