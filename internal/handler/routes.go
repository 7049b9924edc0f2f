package handler

import (
	"net/http"

	"github.com/msomdec/storefront/internal/service"
)

// Services bundles what the routes depend on.
type Services struct {
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Carts       *service.CartService
	Images      *service.ImageService
	AuthLimiter *service.TokenBucket
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	cartHandler := NewCartHandler(svc.Carts)
	imageHandler := NewImageHandler(svc.Images)

	mux.HandleFunc("GET /{$}", HandleHome)
	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.Handle("GET /metrics", HandleMetrics())

	mux.HandleFunc("POST /upload", imageHandler.HandleUpload)
	mux.HandleFunc("GET /images/{key}", imageHandler.HandleServe)

	mux.HandleFunc("POST /addproduct", catalogHandler.HandleAdd)
	mux.HandleFunc("POST /removeproduct", catalogHandler.HandleRemove)
	mux.HandleFunc("GET /allproducts", catalogHandler.HandleListAll)
	mux.HandleFunc("GET /newcollections", catalogHandler.HandleNewCollections)
	mux.HandleFunc("GET /popularinwomen", catalogHandler.HandlePopular)
	mux.HandleFunc("GET /popular/{category}", catalogHandler.HandlePopular)

	signup := http.Handler(http.HandlerFunc(authHandler.HandleSignup))
	login := http.Handler(http.HandlerFunc(authHandler.HandleLogin))
	if svc.AuthLimiter != nil {
		signup = RateLimit(svc.AuthLimiter, signup)
		login = RateLimit(svc.AuthLimiter, login)
	}
	mux.Handle("POST /signup", signup)
	mux.Handle("POST /login", login)

	mux.Handle("POST /addtocart", RequireAuth(svc.Auth, http.HandlerFunc(cartHandler.HandleAdd)))
	mux.Handle("POST /getcart", RequireAuth(svc.Auth, http.HandlerFunc(cartHandler.HandleGet)))
}

// Wrap applies the middleware every request passes through, outermost first:
// metrics, request logging, CORS, then security headers.
func Wrap(h http.Handler, corsOrigins []string) http.Handler {
	return InstrumentHandler(LogRequests(CORS(corsOrigins, SecurityHeaders(h))))
}
