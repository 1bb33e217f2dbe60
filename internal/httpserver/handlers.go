package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/addressapi"
	"storefront-cart/internal/cart"
	"storefront-cart/internal/checkout"
	"storefront-cart/internal/domain"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type cartResponse struct {
	Items         []domain.CartItem `json:"items"`
	Count         int               `json:"count"`
	TotalQuantity int               `json:"totalQuantity"`
	TotalCents    int64             `json:"totalCents"`
}

func toCartResponse(c *cart.SyncedCart) cartResponse {
	items := c.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{
		Items:         items,
		Count:         len(items),
		TotalQuantity: domain.TotalQuantity(items),
		TotalCents:    domain.TotalCents(items),
	}
}

func (h *handlers) cartFor(c *gin.Context) *cart.SyncedCart {
	return h.deps.Carts.Get(c.Request.Context(), c.GetString(ctxSessionToken))
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.cartFor(c)))
}

type addItemRequest struct {
	ID         string                 `json:"id" binding:"required"`
	Name       string                 `json:"name"`
	PriceCents int64                  `json:"priceCents"`
	Quantity   int                    `json:"quantity"`
	Attributes map[string]interface{} `json:"attributes"`
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "product id is required"})
		return
	}
	if req.PriceCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "price must be non-negative"})
		return
	}

	crt := h.cartFor(c)
	crt.Add(c.Request.Context(), domain.CartItem{
		ID:         req.ID,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		Attributes: req.Attributes,
	}, req.Quantity)
	c.JSON(http.StatusOK, toCartResponse(crt))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	crt := h.cartFor(c)
	crt.SetQuantity(c.Request.Context(), c.Param("productId"), req.Quantity)
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *handlers) removeItem(c *gin.Context) {
	crt := h.cartFor(c)
	crt.Remove(c.Request.Context(), c.Param("productId"))
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *handlers) clearCart(c *gin.Context) {
	crt := h.cartFor(c)
	crt.Clear(c.Request.Context())
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *handlers) cartSummary(c *gin.Context) {
	crt := h.cartFor(c)
	c.JSON(http.StatusOK, gin.H{
		"count":         crt.Count(),
		"totalQuantity": crt.TotalQuantity(),
		"totalCents":    crt.TotalCents(),
	})
}

func (h *handlers) listAddresses(c *gin.Context) {
	addresses, err := h.deps.Addresses.List(c.Request.Context(), c.GetString(ctxCustomerID))
	if err != nil {
		h.logger.Printf("list addresses: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "address lookup failed"})
		return
	}
	if addresses == nil {
		addresses = []domain.Address{}
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

type createSessionRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
}

func (h *handlers) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "customerId is required"})
		return
	}
	token, err := h.deps.Sessions.Issue(c.Request.Context(), req.CustomerID)
	if err != nil {
		h.logger.Printf("issue session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not create session"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

type checkoutRequest struct {
	AddressID string `json:"addressId"`
}

type checkoutResponse struct {
	State      checkout.State `json:"state"`
	Message    string         `json:"message,omitempty"`
	InvoiceURL string         `json:"invoiceUrl,omitempty"`
}

// submitCheckout resolves the delivery address (explicit choice or the
// customer's default) and runs one checkout attempt for the session's
// cart.
func (h *handlers) submitCheckout(c *gin.Context) {
	var req checkoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
			return
		}
	}

	customerID := c.GetString(ctxCustomerID)
	crt := h.cartFor(c)

	// Address resolution is the only network step before submission;
	// a cart that cannot pass validation must not trigger it.
	addressID := ""
	if crt.Count() > 0 {
		addresses, err := h.deps.Addresses.List(c.Request.Context(), customerID)
		if err != nil {
			h.logger.Printf("checkout address lookup: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "address lookup failed"})
			return
		}
		if picked, err := addressapi.Pick(addresses, req.AddressID); err == nil {
			addressID = picked.ID
		}
	}
	res, err := h.deps.Checkout.Submit(c.Request.Context(), crt, checkout.Request{
		CustomerID: customerID,
		AddressID:  addressID,
	})
	switch {
	case errors.Is(err, domain.ErrCheckoutInFlight):
		c.JSON(http.StatusConflict, gin.H{"message": "checkout already in progress"})
		return
	case err != nil:
		h.logger.Printf("checkout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "checkout failed"})
		return
	}

	status := http.StatusOK
	if res.State == checkout.StateFailed {
		status = http.StatusBadRequest
	}
	c.JSON(status, checkoutResponse{
		State:      res.State,
		Message:    res.Message,
		InvoiceURL: res.InvoiceURL,
	})
}

func (h *handlers) cancelWatch(c *gin.Context) {
	h.deps.Checkout.CancelWatch(c.GetString(ctxSessionToken))
	c.Status(http.StatusNoContent)
}
