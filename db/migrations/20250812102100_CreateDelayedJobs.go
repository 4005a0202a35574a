package migrations

type CreateDelayedJobs struct{}

func init() {
	registerMigration(&CreateDelayedJobs{})
}

func (m *CreateDelayedJobs) Version() string {
	return "20250812102100"
}

func (m *CreateDelayedJobs) Up(tx *Tx) {
	tx.MustExec(`
		create table delayed_jobs (
			id bigint generated always as identity primary key,
			priority int not null default 0,
			attempts int not null default 0,
			handler text not null,
			last_error text,
			run_at timestamp not null,
			locked_at timestamp,
			failed_at timestamp,
			locked_by text,
			queue text not null default 'default',
			created_at timestamp not null default (now() at time zone 'utc')
		)
	`)
	tx.MustExec(`create index index_delayed_jobs_on_run_at on delayed_jobs (priority asc, run_at asc)`)
}

func (m *CreateDelayedJobs) Down(tx *Tx) {
	tx.MustExec(`drop table delayed_jobs`)
}
