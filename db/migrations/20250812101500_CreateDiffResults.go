package migrations

type CreateDiffResults struct{}

func init() {
	registerMigration(&CreateDiffResults{})
}

func (m *CreateDiffResults) Version() string {
	return "20250812101500"
}

func (m *CreateDiffResults) Up(tx *Tx) {
	tx.MustExec(`
		create table diff_results (
			id uuid primary key,
			created_at timestamp not null default (now() at time zone 'utc'),
			options jsonb not null default '{}',
			summary jsonb not null default '{}',
			diff_html text not null,
			diff_json jsonb not null default '{}',
			source_filenames jsonb not null default '[]',
			source_hashes jsonb not null default '[]'
		)
	`)
	tx.MustExec(`create index index_diff_results_on_created_at on diff_results (created_at desc)`)
}

func (m *CreateDiffResults) Down(tx *Tx) {
	tx.MustExec(`drop table diff_results`)
}
