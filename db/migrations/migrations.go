package migrations

import (
	"docdiff/db/pgw"
	"fmt"
	"sort"
)

type Migration interface {
	Version() string
	Up(tx *Tx)
	Down(tx *Tx)
}

var All []Migration

func registerMigration(migration Migration) {
	All = append(All, migration)
	sort.Slice(All, func(i, j int) bool {
		return All[i].Version() < All[j].Version()
	})
}

// Tx only exposes the panicky helpers so that migrations stay short.
type Tx struct {
	impl *pgw.Tx
}

func WrapTx(tx *pgw.Tx) *Tx {
	return &Tx{tx}
}

func (tx *Tx) MustExec(sql string, args ...any) {
	_, err := tx.impl.Exec(sql, args...)
	if err != nil {
		panic(fmt.Errorf("migration statement failed: %w", err))
	}
}
