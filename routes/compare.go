package routes

import (
	"bytes"
	"docdiff/compare"
	"docdiff/config"
	"docdiff/db/pgw"
	"docdiff/models"
	"docdiff/routes/rutil"
	"docdiff/templates"
	"docdiff/util"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type uploadPageResult struct {
	Title        string
	Session      *util.Session
	ErrorMessage string
}

func Compare_UploadPage(w http.ResponseWriter, r *http.Request) {
	templates.MustWrite(w, "compare/upload", uploadPageResult{
		Title:   util.DecorateTitle("Compare documents"),
		Session: rutil.Session(r),
	})
}

type resultPageResult struct {
	Title     string
	Persisted bool
	ResultId  string
	DiffHtml  template.HTML
}

func Compare_Submit(w http.ResponseWriter, r *http.Request) {
	logger := rutil.Logger(r)

	if err := r.ParseMultipartForm(config.Cfg.UploadMaxBytes); err != nil {
		badRequest(w, r, "Couldn't read the uploaded files. Are they within the size limit?")
		return
	}

	beforeFile, ok := readUpload(w, r, "before_file")
	if !ok {
		return
	}
	afterFile, ok := readUpload(w, r, "after_file")
	if !ok {
		return
	}
	options := optionsFromForm(r)

	report, err := compare.PerformComparison(
		beforeFile, afterFile, options, &compare.ZeroLogger{Logger: logger},
	)
	if err != nil {
		logger.Info().Err(err).Msg("Comparison failed")
		badRequest(w, r, "Couldn't compare these files. Supported formats are .docx and .html.")
		return
	}

	diffHtml := renderDiffSection(report)

	resultId, persistErr := persistResult(r, report, options, diffHtml, beforeFile, afterFile)
	if persistErr != nil {
		// Degraded mode: show the result without a permalink
		logger.Error().Err(persistErr).Msg("Couldn't save diff result")
		templates.MustWrite(w, "compare/result", resultPageResult{
			Title:     util.DecorateTitle("Comparison result"),
			Persisted: false,
			DiffHtml:  template.HTML(diffHtml),
		})
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/result/%s", resultId), http.StatusSeeOther)
}

func Compare_Result(w http.ResponseWriter, r *http.Request) {
	result, ok := fetchResult(w, r)
	if !ok {
		return
	}

	templates.MustWrite(w, "compare/result", resultPageResult{
		Title:     util.DecorateTitle("Comparison result"),
		Persisted: true,
		ResultId:  result.Id.String(),
		DiffHtml:  template.HTML(result.DiffHtml),
	})
}

func Compare_Api(w http.ResponseWriter, r *http.Request) {
	logger := rutil.Logger(r)

	if err := r.ParseMultipartForm(config.Cfg.UploadMaxBytes); err != nil {
		rutil.MustWriteJson(w, http.StatusBadRequest, map[string]any{
			"error": "couldn't read uploaded files",
		})
		return
	}

	beforeFile, err := readUploadErr(r, "before_file")
	if err != nil {
		rutil.MustWriteJson(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	afterFile, err := readUploadErr(r, "after_file")
	if err != nil {
		rutil.MustWriteJson(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	options := optionsFromForm(r)

	report, err := compare.PerformComparison(
		beforeFile, afterFile, options, &compare.ZeroLogger{Logger: logger},
	)
	if err != nil {
		logger.Info().Err(err).Msg("Comparison failed")
		rutil.MustWriteJson(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "unsupported or malformed document",
		})
		return
	}

	diffHtml := renderDiffSection(report)
	response := map[string]any{
		"persisted": false,
		"report":    report,
	}
	resultId, persistErr := persistResult(r, report, options, diffHtml, beforeFile, afterFile)
	if persistErr != nil {
		logger.Error().Err(persistErr).Msg("Couldn't save diff result")
	} else {
		response["persisted"] = true
		response["result_id"] = resultId.String()
	}

	rutil.MustWriteJson(w, http.StatusOK, response)
}

func Compare_ResultJson(w http.ResponseWriter, r *http.Request) {
	pool := rutil.DBPool(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Misc_NotFound(w, r)
		return
	}

	conn, err := pool.Acquire()
	if err != nil {
		rutil.MustWriteJson(w, http.StatusServiceUnavailable, map[string]any{
			"error": "storage unavailable",
		})
		return
	}
	defer conn.Release()

	diffJson, err := models.DiffResult_GetJsonById(conn, id)
	if err == models.ErrDiffResultNotFound {
		Misc_NotFound(w, r)
		return
	} else if err != nil {
		panic(err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(diffJson); err != nil {
		panic(err)
	}
}

func renderDiffSection(report *compare.DiffReport) string {
	var buffer bytes.Buffer
	templates.MustWrite(&buffer, "compare/result_section", report)
	return buffer.String()
}

func persistResult(
	r *http.Request, report *compare.DiffReport, options compare.DiffOptions,
	diffHtml string, beforeFile compare.InputFile, afterFile compare.InputFile,
) (uuid.UUID, error) {
	pool := rutil.DBPool(r)
	conn, err := pool.Acquire()
	if err != nil {
		return uuid.Nil, err
	}
	defer conn.Release()

	var resultId uuid.UUID
	err = util.Tx(conn, func(tx *pgw.Tx, _ util.Clobber) error {
		var err error
		resultId, err = models.DiffResult_Create(
			tx, report, options, diffHtml,
			[]string{beforeFile.Filename, afterFile.Filename},
			[]string{models.SourceHash(beforeFile.Content), models.SourceHash(afterFile.Content)},
		)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return resultId, nil
}

func fetchResult(w http.ResponseWriter, r *http.Request) (*models.DiffResult, bool) {
	pool := rutil.DBPool(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Misc_NotFound(w, r)
		return nil, false
	}

	conn, err := pool.Acquire()
	if err != nil {
		panic(util.HttpError{Status: http.StatusServiceUnavailable, Inner: err})
	}
	defer conn.Release()

	result, err := models.DiffResult_GetById(conn, id)
	if err == models.ErrDiffResultNotFound {
		Misc_NotFound(w, r)
		return nil, false
	} else if err != nil {
		panic(err)
	}
	return result, true
}

func readUpload(
	w http.ResponseWriter, r *http.Request, field string,
) (compare.InputFile, bool) {
	inputFile, err := readUploadErr(r, field)
	if err != nil {
		badRequest(w, r, "Both document versions are required.")
		return compare.InputFile{}, false
	}
	return inputFile, true
}

func readUploadErr(r *http.Request, field string) (compare.InputFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return compare.InputFile{}, fmt.Errorf("missing file: %s", field)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return compare.InputFile{}, err
	}
	return compare.InputFile{
		Filename: header.Filename,
		Content:  content,
	}, nil
}

func optionsFromForm(r *http.Request) compare.DiffOptions {
	return compare.DiffOptions{
		Text: compare.TextOptions{
			IgnoreCase:        util.BoolParam(r, "ignore_case"),
			IgnorePunctuation: util.BoolParam(r, "ignore_punctuation"),
			IgnoreWhitespace:  util.BoolParam(r, "ignore_whitespace"),
		},
		Url: compare.UrlOptions{
			IgnoreProtocol:         util.BoolParam(r, "ignore_protocol"),
			NormalizeTrailingSlash: util.BoolParam(r, "normalize_trailing_slash"),
			LowercaseHost:          util.BoolParam(r, "lowercase_host"),
			DropTrackingParams:     util.BoolParam(r, "drop_tracking_params"),
			StripFragment:          util.BoolParam(r, "strip_fragment"),
		},
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	w.WriteHeader(http.StatusBadRequest)
	templates.MustWrite(w, "compare/upload", uploadPageResult{
		Title:        util.DecorateTitle("Compare documents"),
		Session:      rutil.Session(r),
		ErrorMessage: message,
	})
}
