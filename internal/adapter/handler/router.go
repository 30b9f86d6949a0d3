package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

type RouterConfig struct {
	Handler        *HTTPHandler
	Logger         zerolog.Logger
	Observer       HTTPObserver
	MetricsHandler http.Handler
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recovery(cfg.Logger))
	r.Use(RequestID)
	r.Use(Logging(cfg.Logger))
	r.Use(Tracing(otel.Tracer(tracerName)))
	if cfg.Observer != nil {
		r.Use(Metrics(cfg.Observer))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader, "Traceparent", "Tracestate"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	h := cfg.Handler
	r.Get("/health", h.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{product_id}", h.GetProduct)
	})

	r.Route("/cart/{user_id}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddCartItem)
		r.Delete("/items/{product_id}", h.RemoveCartItem)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Post("/set", h.SetStock)
		r.Post("/reserve", h.ReserveStock)
		r.Post("/release", h.ReleaseStock)
		r.Get("/{product_id}", h.GetStock)
	})

	r.Post("/payment/charge", h.Charge)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/latest/{user_id}", h.GetLatestOrder)
		r.Get("/{user_id}", h.GetOrders)
	})

	r.Post("/checkout", h.Checkout)

	return r
}
