package server

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter builds the HTTP handler for app, including request logging and
// panic recovery.
func NewRouter(app *App) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", app.HomeHandler).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/pages", noStore(app.RecentPagesHandler)).Methods("GET")
	api.HandleFunc("/page", app.AddPageHandler).Methods("POST")
	api.HandleFunc("/page/{uuid}", app.EditPageHandler).Methods("POST")
	api.HandleFunc("/page/{name}", app.PageHandler).Methods("GET")
	api.HandleFunc("/page/{name}/history", noStore(app.HistoryHandler)).Methods("GET")
	api.HandleFunc("/page/{name}/revision/{id:[0-9]+}", app.RevisionHandler).Methods("GET")
	api.HandleFunc("/page/{name}/diff", app.DiffHandler).Methods("GET")
	api.HandleFunc("/page/{name}/backlinks", noStore(app.BacklinksHandler)).Methods("GET")
	api.HandleFunc("/file/{uuid}", app.FileHandler).Methods("GET")
	api.HandleFunc("/search", noStore(app.SearchHandler)).Methods("GET")
	api.NotFoundHandler = http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "application/json; charset=utf-8")
		rw.WriteHeader(http.StatusNotFound)
		rw.Write([]byte(`{"code":404,"error":"no such endpoint"}` + "\n"))
	})

	if app.Config.StaticDir != "" {
		fs := http.FileServer(http.Dir(app.Config.StaticDir))
		router.Handle("/index.html", cacheControlHandler(directoryIndex(fs), "no-store")).Methods("GET", "HEAD")
		router.PathPrefix("/").Handler(cacheControlHandler(fs, "no-store")).Methods("GET", "HEAD")
	}

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)

	return SlogLoggingMiddleware(recovery(router))
}

// directoryIndex serves /index.html as the directory root. http.FileServer
// would otherwise redirect it back to /, which redirects here again.
func directoryIndex(fs http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		r := req.Clone(req.Context())
		r.URL.Path = "/"
		fs.ServeHTTP(rw, r)
	})
}
