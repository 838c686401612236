package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAnalysisRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/analyses", handler.CreateAnalysis)
}

func registerLedgerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/users/{userID}/balance", handler.GetBalance)
	mux.HandleFunc("GET /v1/users/{userID}/ledger", handler.ListLedgerEntries)
	mux.HandleFunc("POST /v1/users/{userID}/credits", handler.TopUpCredits)
}
