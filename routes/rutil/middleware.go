package rutil

import (
	"docdiff/db/pgw"
	"docdiff/middleware"
	"docdiff/util"
	"fmt"
	"html/template"
	"net/http"
)

// This file wraps calls to the middleware package so that the routes don't have to reference it

func Logger(r *http.Request) *middleware.WebLogger {
	return middleware.GetLogger(r)
}

func DBPool(r *http.Request) *pgw.Pool {
	return middleware.GetDBPool(r)
}

func CSRFField(r *http.Request) template.HTML {
	return template.HTML(fmt.Sprintf(
		"<input type=\"hidden\" name=\"authenticity_token\" value=\"%s\">", middleware.GetCSRFToken(r),
	))
}

func Session(r *http.Request) *util.Session {
	return &util.Session{
		CSRFToken: middleware.GetCSRFToken(r),
		CSRFField: CSRFField(r),
	}
}
