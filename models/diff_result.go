package models

import (
	"docdiff/compare"
	"docdiff/db/pgw"
	"docdiff/oops"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/blake2b"
)

var ErrDiffResultNotFound = errors.New("diff result not found")

type DiffResult struct {
	Id              uuid.UUID
	CreatedAt       time.Time
	Options         compare.DiffOptions
	Summary         compare.Summary
	LinkChanges     []compare.LinkChange
	DiffHtml        string
	SourceFilenames []string
	SourceHashes    []string
}

// SourceHash fingerprints an uploaded file so stored results can be traced back
// to their exact inputs without storing the documents themselves.
func SourceHash(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func DiffResult_Create(
	tx pgw.Queryable, report *compare.DiffReport, options compare.DiffOptions,
	diffHtml string, sourceFilenames []string, sourceHashes []string,
) (uuid.UUID, error) {
	optionsJson, err := json.Marshal(options)
	if err != nil {
		return uuid.Nil, oops.Wrap(err)
	}
	summaryJson, err := json.Marshal(report.Summary)
	if err != nil {
		return uuid.Nil, oops.Wrap(err)
	}
	diffJson, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, oops.Wrap(err)
	}
	filenamesJson, err := json.Marshal(sourceFilenames)
	if err != nil {
		return uuid.Nil, oops.Wrap(err)
	}
	hashesJson, err := json.Marshal(sourceHashes)
	if err != nil {
		return uuid.Nil, oops.Wrap(err)
	}

	// Random ids collide essentially never, but a retry on unique violation is
	// cheaper than a 500
	for attempt := 0; ; attempt++ {
		id := uuid.New()
		_, err := tx.Exec(`
			insert into diff_results (
				id, created_at, options, summary, diff_json, diff_html,
				source_filenames, source_hashes
			)
			values ($1, now() at time zone 'utc', $2, $3, $4, $5, $6, $7)
		`, id, optionsJson, summaryJson, diffJson, diffHtml, filenamesJson, hashesJson)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && attempt == 0 {
				continue
			}
			return uuid.Nil, oops.Wrap(err)
		}
		return id, nil
	}
}

func DiffResult_GetById(tx pgw.Queryable, id uuid.UUID) (*DiffResult, error) {
	row := tx.QueryRow(`
		select created_at, options, summary, diff_json, diff_html, source_filenames, source_hashes
		from diff_results
		where id = $1
	`, id)

	var result DiffResult
	result.Id = id
	var optionsJson, summaryJson, diffJson, filenamesJson, hashesJson []byte
	err := row.Scan(
		&result.CreatedAt, &optionsJson, &summaryJson, &diffJson, &result.DiffHtml,
		&filenamesJson, &hashesJson,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDiffResultNotFound
	} else if err != nil {
		return nil, oops.Wrap(err)
	}

	if err := json.Unmarshal(optionsJson, &result.Options); err != nil {
		return nil, oops.Wrap(err)
	}
	if err := json.Unmarshal(summaryJson, &result.Summary); err != nil {
		return nil, oops.Wrap(err)
	}
	var report compare.DiffReport
	if err := json.Unmarshal(diffJson, &report); err != nil {
		return nil, oops.Wrap(err)
	}
	result.LinkChanges = report.LinkChanges
	if err := json.Unmarshal(filenamesJson, &result.SourceFilenames); err != nil {
		return nil, oops.Wrap(err)
	}
	if err := json.Unmarshal(hashesJson, &result.SourceHashes); err != nil {
		return nil, oops.Wrap(err)
	}

	return &result, nil
}

// DiffResult_GetJsonById fetches the stored report verbatim for the api route,
// skipping a decode/encode round trip.
func DiffResult_GetJsonById(tx pgw.Queryable, id uuid.UUID) ([]byte, error) {
	row := tx.QueryRow(`select diff_json from diff_results where id = $1`, id)
	var diffJson []byte
	err := row.Scan(&diffJson)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDiffResultNotFound
	} else if err != nil {
		return nil, oops.Wrap(err)
	}
	return diffJson, nil
}

type DiffResultExport struct {
	Id        uuid.UUID
	CreatedAt time.Time
	DiffJson  []byte
}

// DiffResult_ListCreatedBefore returns results older than the cutoff, oldest
// first, for the archive job.
func DiffResult_ListCreatedBefore(
	tx pgw.Queryable, cutoff time.Time, limit int,
) ([]DiffResultExport, error) {
	rows, err := tx.Query(`
		select id, created_at, diff_json
		from diff_results
		where created_at < $1
		order by created_at
		limit $2
	`, cutoff, limit)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	defer rows.Close()

	var exports []DiffResultExport
	for rows.Next() {
		var export DiffResultExport
		if err := rows.Scan(&export.Id, &export.CreatedAt, &export.DiffJson); err != nil {
			return nil, oops.Wrap(err)
		}
		exports = append(exports, export)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Wrap(err)
	}
	return exports, nil
}

func DiffResult_DeleteByIds(tx pgw.Queryable, ids []uuid.UUID) (int64, error) {
	tag, err := tx.Exec(`delete from diff_results where id = any($1)`, ids)
	if err != nil {
		return 0, oops.Wrap(err)
	}
	return tag.RowsAffected(), nil
}

func DiffResult_DeleteCreatedBefore(tx pgw.Queryable, cutoff time.Time) (int64, error) {
	tag, err := tx.Exec(`delete from diff_results where created_at < $1`, cutoff)
	if err != nil {
		return 0, oops.Wrap(err)
	}
	return tag.RowsAffected(), nil
}
