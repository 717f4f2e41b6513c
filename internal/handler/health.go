package handler

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		data := map[string]string{"timestamp": time.Now().UTC().Format(time.RFC3339)}
		if err := db.Ping(ctx); err != nil {
			data["database"] = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, response{Message: "Service degraded", Data: data, Error: err.Error()})
			return
		}
		data["database"] = "ok"
		ok(w, http.StatusOK, "Server is running", data)
	}
}

func IndexHandler() http.HandlerFunc {
	endpoints := map[string]string{
		"foods":      "/api/foods",
		"orders":     "/api/orders",
		"promoCodes": "/api/promo-codes",
		"auth":       "/api/auth",
		"health":     "/health",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ok(w, http.StatusOK, "Food ordering API", map[string]any{
			"version":   "1.0.0",
			"endpoints": endpoints,
		})
	}
}
