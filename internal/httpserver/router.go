package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-cart/internal/cart"
	"storefront-cart/internal/checkout"
	"storefront-cart/internal/domain"
)

// Deps carries the services the router dispatches to.
type Deps struct {
	Carts     *cart.Manager
	Checkout  *checkout.Orchestrator
	Sessions  SessionService
	Addresses AddressLister
}

// SessionService issues and resolves bearer session tokens.
type SessionService interface {
	Issue(ctx context.Context, customerID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
}

// AddressLister fetches the customer's saved delivery addresses.
type AddressLister interface {
	List(ctx context.Context, customerID string) ([]domain.Address, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	router.POST("/sessions", h.createSession)

	authed := router.Group("/", sessionMiddleware(deps.Sessions))
	authed.GET("/cart", h.getCart)
	authed.POST("/cart/items", h.addItem)
	authed.PUT("/cart/items/:productId", h.setQuantity)
	authed.DELETE("/cart/items/:productId", h.removeItem)
	authed.DELETE("/cart", h.clearCart)
	authed.GET("/cart/summary", h.cartSummary)
	authed.GET("/addresses", h.listAddresses)
	authed.POST("/checkout", h.submitCheckout)
	authed.DELETE("/checkout/watch", h.cancelWatch)

	return router
}
