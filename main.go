package main

import (
	"docdiff/cmd/comparecli"
	"docdiff/config"
	"docdiff/db"
	"docdiff/jobs"
	"docdiff/log"
	ddmiddleware "docdiff/middleware"
	"docdiff/routes"
	"docdiff/util"
	"fmt"
	"net/http"

	_ "net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spf13/cobra"
)

func main() {
	if config.Cfg.Env.IsDevOrTest() {
		// pprof
		go func() {
			fmt.Println(http.ListenAndServe("localhost:6060", nil))
		}()
	}

	rootCmd := &cobra.Command{
		Use: "docdiff",
		Run: func(_ *cobra.Command, _ []string) {
			runServer()
		},
	}
	rootCmd.AddCommand(db.DbCmd)
	rootCmd.AddCommand(jobs.Worker)
	rootCmd.AddCommand(comparecli.Compare)

	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

func runServer() {
	r := chi.NewRouter()
	r.Use(ddmiddleware.Logger)
	r.Use(middleware.Compress(5))
	r.Use(ddmiddleware.Recoverer)
	r.Use(ddmiddleware.DefaultHeaders)
	r.Use(middleware.GetHead)
	r.Use(ddmiddleware.DB)

	r.Group(func(r chi.Router) {
		r.Use(ddmiddleware.Session)
		r.Use(ddmiddleware.CSRF)

		r.Get("/", routes.Compare_UploadPage)
		r.Post("/compare", routes.Compare_Submit)
		r.Get("/result/{id}", routes.Compare_Result)
		r.Get("/export/pdf/{id}", routes.Compare_ExportPdf)
	})

	// The json api authenticates nothing and skips csrf
	r.Post("/api/compare", routes.Compare_Api)
	r.Get("/api/result/{id}", routes.Compare_ResultJson)

	r.Get(util.HealthPath, routes.Misc_Health)
	r.Get(util.StaticUrlPrefix+"*", routes.Static_File)
	r.NotFound(routes.Misc_NotFound)

	log.Info().Msg("Started")
	if err := http.ListenAndServe(fmt.Sprintf(":%d", config.Cfg.Port), r); err != nil {
		panic(err)
	}
}
