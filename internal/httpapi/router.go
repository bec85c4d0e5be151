package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Leads
	lh := LeadsHandler{DB: d.DB, Hub: d.Hub, CfgVal: d.CfgVal, DeleteLead: d.DeleteLead}
	mux.HandleFunc("/leads", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  lh.List,
		http.MethodPost: lh.Create,
	}))
	mux.HandleFunc("/leads/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    lh.GetByPath,    // /leads/{id} or /leads/{id}/recommendations
		http.MethodDelete: lh.DeleteByPath, // expects /leads/{id}
	}))

	// Ad-hoc recommendations (lead in the request body, nothing stored)
	rh := RecommendHandler{DB: d.DB, CfgVal: d.CfgVal}
	mux.HandleFunc("/api/recommendations", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: rh.Generate,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetIMAPPassword,
		http.MethodDelete: sh.DeleteIMAPPassword,
	}))

	// Intake
	ih := IntakeHandler{
		DB:           d.DB,
		CfgVal:       d.CfgVal,
		IntakeStatus: d.IntakeStatus,
		Hub:          d.Hub,
		RunIntake:    d.RunIntake,
	}
	mux.HandleFunc("/intake/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.Status,
	}))
	mux.HandleFunc("/intake/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{DB: d.DB}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
