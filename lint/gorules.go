// Run `golangci-lint cache clean` after modifying this file.

package gorules

import (
	"github.com/quasilyte/go-ruleguard/dsl"
)

func dbAccess(m dsl.Matcher) {
	m.Match(`pgxpool.$_`).
		Where(!m.File().PkgPath.Matches(`docdiff/db`)).
		Report(`direct pgxpool access is only allowed in db, use pgw wrappers instead`)
	m.Match(`pgw.Conn`).
		Where(
			!m.File().PkgPath.Matches(`docdiff/routes`) &&
				!m.File().PkgPath.Matches(`docdiff/db`) &&
				!m.File().PkgPath.Matches(`docdiff/jobs`) &&
				!m.File().PkgPath.Matches(`docdiff/middleware`)).
		Report(`references to pgw.Conn are only allowed in db, middleware, jobs and routes, use pgw.Queryable instead`)
}

func printlnDebug(m dsl.Matcher) {
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`).
		Where(!m.File().PkgPath.Matches(`docdiff/cmd`)).
		Report(`stray print call, use the log package instead`)
}
