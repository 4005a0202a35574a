package templates

import (
	"docdiff/util"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed */*.gohtml
var templateFS embed.FS

// Templates are keyed by directory-qualified name without the extension, e.g.
// "compare/result".
var Templates map[string]*template.Template

func init() {
	funcMap := template.FuncMap{
		"static": func(name string) string {
			return util.StaticUrlPrefix + name
		},
	}

	paths, err := fs.Glob(templateFS, "*/*.gohtml")
	if err != nil {
		panic(err)
	}

	Templates = make(map[string]*template.Template)
	for _, path := range paths {
		name := strings.TrimSuffix(path, ".gohtml")
		content, err := templateFS.ReadFile(path)
		if err != nil {
			panic(err)
		}
		Templates[name] = template.Must(
			template.New(name).Funcs(funcMap).Parse(string(content)),
		)
	}
}

func MustWrite(w io.Writer, name string, data any) {
	tmpl, ok := Templates[name]
	if !ok {
		panic("unknown template: " + name)
	}
	err := tmpl.Execute(w, data)
	if err != nil {
		panic(err)
	}
}
