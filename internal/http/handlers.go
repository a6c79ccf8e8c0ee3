package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/product-reconciler/internal/config"
	httpopenapi "github.com/fairyhunter13/product-reconciler/internal/http/openapi"
	"github.com/fairyhunter13/product-reconciler/internal/model"
	"github.com/fairyhunter13/product-reconciler/internal/obs"
	"github.com/fairyhunter13/product-reconciler/internal/store"
)

type App struct {
	Cfg     config.Config
	Store   *store.Store
	closing atomic.Bool
	started time.Time

	created atomic.Uint64
	deleted atomic.Uint64
}

type createBody struct {
	Name  string `json:"name"`
	Price any    `json:"price"`
}

func NewApp(cfg config.Config, st *store.Store) *App {
	return &App{Cfg: cfg, Store: st, started: time.Now()}
}

// StartShutdown makes the API reject further writes.
func (a *App) StartShutdown() { a.closing.Store(true) }

func (a *App) productsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.Store.List())
	case http.MethodPost:
		a.createProduct(w, r)
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) createProduct(w http.ResponseWriter, r *http.Request) {
	if a.closing.Load() {
		WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
		return
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return
	}
	var body createBody
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	price := model.CoercePrice(body.Price)
	if price < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "price must be >= 0")
		return
	}
	p := a.Store.Create(name, price)
	a.created.Add(1)
	writeJSON(w, http.StatusCreated, p)
	obs.Logger.Info().
		Str("request_id", RequestIDFromContext(r.Context())).
		Int64("product_id", p.ID).
		Float64("price", p.Price).
		Msg("product_created")
}

func (a *App) productHandler(w http.ResponseWriter, r *http.Request) {
	prefix := "/products/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, prefix), 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, ok := a.Store.Get(id)
		if !ok {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if a.closing.Load() {
			WriteJSONError(w, http.StatusServiceUnavailable, "shutting_down", "")
			return
		}
		if !a.Store.Delete(id) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "")
			return
		}
		a.deleted.Add(1)
		w.WriteHeader(http.StatusNoContent)
		obs.Logger.Info().
			Str("request_id", RequestIDFromContext(r.Context())).
			Int64("product_id", id).
			Msg("product_deleted")
	default:
		WriteJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"product_count":    a.Store.Len(),
		"products_created": a.created.Load(),
		"products_deleted": a.deleted.Load(),
		"uptime_sec":       time.Since(a.started).Seconds(),
	})
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Product Store API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
