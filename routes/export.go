package routes

import (
	"bytes"
	"docdiff/routes/rutil"
	"docdiff/templates"
	"docdiff/util"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Compare_ExportPdf renders a stored result through headless Chrome and streams
// the pdf back. Chrome startup dominates the latency, which is acceptable for
// an explicit export click.
func Compare_ExportPdf(w http.ResponseWriter, r *http.Request) {
	result, ok := fetchResult(w, r)
	if !ok {
		return
	}

	type PdfResult struct {
		Title    string
		DiffHtml template.HTML
	}
	var htmlBuffer bytes.Buffer
	templates.MustWrite(&htmlBuffer, "compare/pdf", PdfResult{
		Title:    util.DecorateTitle("Comparison result"),
		DiffHtml: template.HTML(result.DiffHtml),
	})

	controlUrl, err := launcher.New().Headless(true).Launch()
	if err != nil {
		panic(util.HttpError{Status: http.StatusServiceUnavailable, Inner: err})
	}
	browser := rod.New().ControlURL(controlUrl)
	if err := browser.Connect(); err != nil {
		panic(util.HttpError{Status: http.StatusServiceUnavailable, Inner: err})
	}
	defer func() {
		if err := browser.Close(); err != nil {
			rutil.Logger(r).Warn().Err(err).Msg("Couldn't close the browser")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		panic(err)
	}
	if err := page.SetDocumentContent(htmlBuffer.String()); err != nil {
		panic(err)
	}
	if err := page.WaitLoad(); err != nil {
		panic(err)
	}

	pdfReader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
	})
	if err != nil {
		panic(err)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="docdiff-%s.pdf"`, result.Id),
	)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, pdfReader); err != nil {
		panic(err)
	}
}
