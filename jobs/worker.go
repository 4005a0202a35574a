package jobs

import (
	"context"
	"docdiff/db"
	"docdiff/db/pgw"
	"docdiff/log"
	"docdiff/oops"
	"errors"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var Worker *cobra.Command

func init() {
	Worker = &cobra.Command{
		Use: "worker",
		Run: func(_ *cobra.Command, _ []string) {
			logger := &log.BackgroundLogger{TaskName: "worker"}

			pool := db.RootPool.Child(context.Background(), logger)
			conn, err := pool.Acquire()
			if err != nil {
				logger.Error().Err(err).Msg("Couldn't connect to db")
				os.Exit(1)
			}

			scheduleRecurringJobs(conn, logger)

			err = startWorker(conn, pool, logger)
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("Context canceled, shutting down")
				os.Exit(0)
			} else if err != nil {
				logger.Error().Err(err).Msg("Error occurred in the worker, shutting down")
				os.Exit(1)
			}
		},
	}
}

type jobFunc func(ctx context.Context, id JobId, conn *pgw.Conn, args []string) error

type jobNameFunc struct {
	ClassName string
	Func      jobFunc
}

var jobNameFuncs []jobNameFunc

func registerJobNameFunc(className string, f jobFunc) {
	jobNameFuncs = append(jobNameFuncs, jobNameFunc{
		ClassName: className,
		Func:      f,
	})
}

const workerName = "docdiff-worker"
const sleepDelay = 100 * time.Millisecond
const maxPollFailures = 600 // One minute of sleeps with sleepDelay
const maxAttempts = 10
const maxRunTimeDeadline = 15 * time.Minute
const maxRunTimeTimeout = maxRunTimeDeadline - time.Minute

type job struct {
	Id         JobId
	Attempts   int32
	RawHandler string
	JobData    JobData
}

func startWorker(conn *pgw.Conn, pool *pgw.Pool, logger log.Logger) error {
	jobFuncsByClassName := make(map[string]jobFunc)
	for _, jobNameFunc := range jobNameFuncs {
		if _, ok := jobFuncsByClassName[jobNameFunc.ClassName]; ok {
			return oops.Newf("Duplicate job class name: %s", jobNameFunc.ClassName)
		}
		jobFuncsByClassName[jobNameFunc.ClassName] = jobNameFunc.Func
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()
	go func() {
		<-signalCtx.Done()
		logger.Info().Msg("Caught termination signal")
	}()

	logger.Info().Msg("Worker started")

	pollFailures := 0
	for {
		if err := signalCtx.Err(); err != nil {
			return err
		}

		var j job
		jobPollTime := time.Now().UTC()
		lockExpiredTimestamp := jobPollTime.Add(-maxRunTimeDeadline)
		row := conn.QueryRow(`
			update delayed_jobs
			set locked_at = $1, locked_by = $3
			where id in (
				select id
				from delayed_jobs
				where (
					(run_at <= $1 and (locked_at is null or locked_at < $2)) or
					locked_by = $3
				) and failed_at is null
				order by priority asc, run_at asc
				limit 1
				for update
			)
			returning id, attempts, handler
		`, jobPollTime, lockExpiredTimestamp, workerName)
		err := row.Scan(&j.Id, &j.Attempts, &j.RawHandler)
		if errors.Is(err, pgx.ErrNoRows) {
			time.Sleep(sleepDelay)
			continue
		} else if err != nil {
			pollFailures++
			logger.Error().Err(err).Msgf("Poll failures: %d", pollFailures)
			if pollFailures >= maxPollFailures {
				return oops.New("Max poll failures reached")
			}
			time.Sleep(sleepDelay)
			continue
		}
		pollFailures = 0

		var h Handler
		err = yaml.Unmarshal([]byte(j.RawHandler), &h)
		if err != nil {
			jobErr := oops.Wrapf(err, "YAML deserialization error")
			logger.Error().Err(jobErr).Send()
			if err := failJob(conn, j, jobErr); err != nil {
				return err
			}
			continue
		}
		j.JobData = h.JobData

		if err := runJob(signalCtx, j, jobFuncsByClassName, pool, conn, logger); err != nil {
			return err
		}
	}
}

func runJob(
	signalCtx context.Context, j job, jobFuncsByClassName map[string]jobFunc,
	pool *pgw.Pool, conn *pgw.Conn, logger log.Logger,
) error {
	jobLogger := &log.BackgroundLogger{TaskName: j.JobData.JobClass}

	jobFunc, ok := jobFuncsByClassName[j.JobData.JobClass]
	if !ok {
		jobErr := oops.Newf("Couldn't find job func for class %s", j.JobData.JobClass)
		jobLogger.Error().Err(jobErr).Send()
		return failJob(conn, j, jobErr)
	}

	// Context cancellation is handled at the job level and not at db level so that
	// quick-running jobs can gracefully finish
	jobConn, err := pool.Child(context.Background(), jobLogger).Acquire()
	if err != nil {
		jobLogger.Error().Err(err).Msg("Couldn't acquire a job db connection")
		return failJob(conn, j, err)
	}
	defer jobConn.Release()

	jobLogger.Info().Int64("job_id", int64(j.Id)).Msg("Performing")
	jobStart := time.Now().UTC()
	timeoutCtx, timeoutCancel := context.WithTimeout(signalCtx, maxRunTimeTimeout)
	jobErr := jobFunc(timeoutCtx, j.Id, jobConn, j.JobData.Arguments)
	timeoutCancel()
	if jobErr != nil {
		if errors.Is(jobErr, context.Canceled) {
			jobLogger.Info().Int64("job_id", int64(j.Id)).Msg("Canceled")
		} else {
			jobLogger.
				Error().
				Err(jobErr).
				Int64("job_id", int64(j.Id)).
				TimeDiff("duration", time.Now().UTC(), jobStart).
				Msg("Failed")
		}
		return failJob(conn, j, jobErr)
	}

	jobLogger.
		Info().
		Int64("job_id", int64(j.Id)).
		TimeDiff("duration", time.Now().UTC(), jobStart).
		Msg("Completed")
	_, err = conn.Exec(`delete from delayed_jobs where id = $1`, j.Id)
	return err
}

func failJob(conn *pgw.Conn, j job, jobErr error) error {
	utcNow := time.Now().UTC()
	errorStr := jobErr.Error()

	if j.Attempts+1 >= maxAttempts {
		_, err := conn.Exec(`
			update delayed_jobs
			set locked_at = null,
				locked_by = null,
				attempts = $1,
				last_error = $2,
				failed_at = $3
			where id = $4
		`, j.Attempts+1, errorStr, utcNow, j.Id)
		return err
	}

	retryInSeconds := math.Pow(float64(j.Attempts), 4) + 5
	nextRunAt := utcNow.Add(time.Duration(retryInSeconds) * time.Second)

	_, err := conn.Exec(`
		update delayed_jobs
		set locked_at = null,
			locked_by = null,
			attempts = $1,
			last_error = $2,
			run_at = $3
		where id = $4
	`, j.Attempts+1, errorStr, nextRunAt, j.Id)
	return err
}

// scheduleRecurringJobs enqueues the first run of each recurring job at startup
// if there isn't one pending already. Jobs reschedule themselves afterwards.
func scheduleRecurringJobs(conn *pgw.Conn, logger log.Logger) {
	recurring := []string{CleanupOldResultsJobName, ArchiveResultsJobName}
	for _, className := range recurring {
		row := conn.QueryRow(`
			select count(1) from delayed_jobs
			where handler like '%job_class: ' || $1 || '%' and failed_at is null
		`, className)
		var count int
		if err := row.Scan(&count); err != nil {
			logger.Warn().Err(err).Msgf("Couldn't check pending %s", className)
			continue
		}
		if count > 0 {
			continue
		}
		if err := PerformNow(conn, className); err != nil {
			logger.Warn().Err(err).Msgf("Couldn't enqueue %s", className)
		}
	}
}
