package util

import (
	"docdiff/db/pgw"
	"html/template"
)

const HealthPath = "/health"
const StaticUrlPrefix = "/static/"

type Session struct {
	CSRFToken string
	CSRFField template.HTML
}

// Helps the caller of Tx to clobber the variable that's passed as parentTx, preventing accidental use
type Clobber struct{}

func Tx(parentTx pgw.Queryable, f func(*pgw.Tx, Clobber) error) error {
	tx, err := parentTx.Begin()
	if err != nil {
		return err
	}

	err = f(tx, Clobber{})
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			parentTx.Logger().Error().Err(rollbackErr).Msg("Rollback error")
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	return nil
}

func DecorateTitle(title string) string {
	return title + " · DocDiff"
}
