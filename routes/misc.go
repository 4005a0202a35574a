package routes

import (
	"docdiff/routes/rutil"
	"docdiff/templates"
	"docdiff/util"
	"net/http"
)

func Misc_NotFound(w http.ResponseWriter, r *http.Request) {
	type Result struct {
		Title string
	}
	w.WriteHeader(http.StatusNotFound)
	templates.MustWrite(w, "misc/404", Result{
		Title: util.DecorateTitle("Page not found"),
	})
}

func Misc_Health(w http.ResponseWriter, r *http.Request) {
	pool := rutil.DBPool(r)
	conn, err := pool.Acquire()
	if err != nil {
		rutil.MustWriteJson(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"db":     "unavailable",
		})
		return
	}
	defer conn.Release()

	var one int
	if err := conn.QueryRow("select 1").Scan(&one); err != nil {
		rutil.MustWriteJson(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"db":     "unavailable",
		})
		return
	}

	rutil.MustWriteJson(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}
