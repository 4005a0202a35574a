package jobs

import (
	"docdiff/db/pgw"
	"docdiff/oops"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type JobId int64

const runAtFormat = "2006-01-02 15:04:05.000"
const defaultQueue = "default"

// Handler is the yaml payload stored in delayed_jobs.handler.
type Handler struct {
	JobData JobData `yaml:"job_data"`
}

type JobData struct {
	JobClass   string   `yaml:"job_class"`
	JobId      string   `yaml:"job_id"`
	Arguments  []string `yaml:"arguments"`
	EnqueuedAt string   `yaml:"enqueued_at"`
}

func PerformNow(tx pgw.Queryable, class string, arguments ...string) error {
	return PerformAt(tx, time.Now().UTC(), class, arguments...)
}

func PerformAt(tx pgw.Queryable, runAt time.Time, class string, arguments ...string) error {
	handler := Handler{
		JobData: JobData{
			JobClass:   class,
			JobId:      uuid.New().String(),
			Arguments:  arguments,
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}
	handlerYaml, err := yaml.Marshal(&handler)
	if err != nil {
		return oops.Wrap(err)
	}

	runAtStr := runAt.Format(runAtFormat)
	_, err = tx.Exec(`
		insert into delayed_jobs (handler, run_at, queue)
		values ($1, $2, $3)
	`, string(handlerYaml), runAtStr, defaultQueue)
	if err != nil {
		return oops.Wrap(err)
	}
	return nil
}
