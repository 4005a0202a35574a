package jobs

import (
	"bytes"
	"context"
	"docdiff/config"
	"docdiff/db/pgw"
	"docdiff/models"
	"docdiff/oops"
	"docdiff/util"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const ArchiveResultsJobName = "ArchiveResultsJob"

const archiveBatchSize = 100

func init() {
	registerJobNameFunc(
		ArchiveResultsJobName,
		func(ctx context.Context, id JobId, conn *pgw.Conn, args []string) error {
			if len(args) != 0 {
				return oops.Newf("Expected 0 args, got %d: %v", len(args), args)
			}

			return ArchiveResultsJob_Perform(ctx, conn)
		},
	)
}

// ArchiveResultsJob_Perform moves expired results to s3 and deletes them from
// the db, a batch at a time. Skipped entirely when no bucket is configured.
func ArchiveResultsJob_Perform(ctx context.Context, conn *pgw.Conn) error {
	logger := conn.Logger()
	utcNow := time.Now().UTC()

	if config.Cfg.ArchiveBucket != "" {
		client, err := newS3Client(ctx)
		if err != nil {
			return err
		}

		cutoff := utcNow.Add(-time.Duration(config.Cfg.ResultRetentionDays) * 24 * time.Hour)
		archivedTotal := 0
		for {
			exports, err := models.DiffResult_ListCreatedBefore(conn, cutoff, archiveBatchSize)
			if err != nil {
				return err
			}
			if len(exports) == 0 {
				break
			}

			var archivedIds []uuid.UUID
			for _, export := range exports {
				key := fmt.Sprintf(
					"diff_results/%04d/%02d/%s.json",
					export.CreatedAt.Year(), export.CreatedAt.Month(), export.Id,
				)
				_, err := client.PutObject(ctx, &s3.PutObjectInput{
					Bucket:      aws.String(config.Cfg.ArchiveBucket),
					Key:         aws.String(key),
					Body:        bytes.NewReader(export.DiffJson),
					ContentType: aws.String("application/json"),
				})
				if err != nil {
					return oops.Wrap(err)
				}
				archivedIds = append(archivedIds, export.Id)
			}

			err = util.Tx(conn, func(tx *pgw.Tx, _ util.Clobber) error {
				_, err := models.DiffResult_DeleteByIds(tx, archivedIds)
				return err
			})
			if err != nil {
				return err
			}
			archivedTotal += len(archivedIds)
		}
		logger.Info().Msgf("Archived %d diff results", archivedTotal)
	}

	tomorrow := utcNow.Add(24 * time.Hour)
	runAt := time.Date(
		tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 1, 0, 0, 0, time.UTC,
	)
	return PerformAt(conn, runAt, ArchiveResultsJobName)
}

func newS3Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(config.Cfg.AwsRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.Cfg.AwsAccessKey, config.Cfg.AwsSecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return s3.NewFromConfig(awsCfg), nil
}
