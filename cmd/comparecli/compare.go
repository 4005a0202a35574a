package comparecli

import (
	"database/sql"
	"docdiff/compare"
	"docdiff/log"
	"docdiff/models"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

var Compare *cobra.Command

var outputPath string
var noHistory bool
var textOptions compare.TextOptions
var urlOptions compare.UrlOptions

func init() {
	Compare = &cobra.Command{
		Use:   "compare <before> <after>",
		Short: "Compare two documents offline and print the report as json",
		Args:  cobra.ExactArgs(2),
		Run: func(_ *cobra.Command, args []string) {
			run(args[0], args[1])
		},
	}
	flags := Compare.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")
	flags.BoolVar(&noHistory, "no-history", false, "don't record this comparison in the local history")
	flags.BoolVar(&textOptions.IgnoreCase, "ignore-case", false, "")
	flags.BoolVar(&textOptions.IgnorePunctuation, "ignore-punctuation", false, "")
	flags.BoolVar(&textOptions.IgnoreWhitespace, "ignore-whitespace", false, "")
	flags.BoolVar(&urlOptions.IgnoreProtocol, "ignore-protocol", false, "")
	flags.BoolVar(&urlOptions.NormalizeTrailingSlash, "normalize-trailing-slash", false, "")
	flags.BoolVar(&urlOptions.LowercaseHost, "lowercase-host", false, "")
	flags.BoolVar(&urlOptions.DropTrackingParams, "drop-tracking-params", false, "")
	flags.BoolVar(&urlOptions.StripFragment, "strip-fragment", false, "")
}

func run(beforePath string, afterPath string) {
	logger := &log.BackgroundLogger{TaskName: "compare"}

	beforeFile, err := readInput(beforePath)
	if err != nil {
		logger.Error().Err(err).Msg("Couldn't read the before file")
		os.Exit(1)
	}
	afterFile, err := readInput(afterPath)
	if err != nil {
		logger.Error().Err(err).Msg("Couldn't read the after file")
		os.Exit(1)
	}

	options := compare.DiffOptions{Text: textOptions, Url: urlOptions}
	report, err := compare.PerformComparison(
		beforeFile, afterFile, options, &compare.ZeroLogger{Logger: logger},
	)
	if err != nil {
		logger.Error().Err(err).Msg("Comparison failed")
		os.Exit(1)
	}

	reportJson, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		panic(err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, reportJson, 0644); err != nil {
			logger.Error().Err(err).Msg("Couldn't write the report")
			os.Exit(1)
		}
	} else {
		fmt.Println(string(reportJson))
	}

	if !noHistory {
		if err := recordHistory(beforeFile, afterFile, report); err != nil {
			// History is best-effort, the report already went out
			logger.Warn().Err(err).Msg("Couldn't record history")
		}
	}
}

func readInput(path string) (compare.InputFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return compare.InputFile{}, err
	}
	return compare.InputFile{
		Filename: filepath.Base(path),
		Content:  content,
	}, nil
}

// recordHistory appends the comparison to a local sqlite db so past runs can be
// inspected without the server.
func recordHistory(
	beforeFile compare.InputFile, afterFile compare.InputFile, report *compare.DiffReport,
) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	historyDir := filepath.Join(homeDir, ".docdiff")
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(historyDir, "history.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		create table if not exists comparisons (
			id integer primary key autoincrement,
			compared_at text not null,
			before_file text not null,
			after_file text not null,
			before_hash text not null,
			after_hash text not null,
			summary text not null
		)
	`)
	if err != nil {
		return err
	}

	summaryJson, err := json.Marshal(report.Summary)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		insert into comparisons (
			compared_at, before_file, after_file, before_hash, after_hash, summary
		)
		values (?, ?, ?, ?, ?, ?)
	`,
		time.Now().UTC().Format(time.RFC3339),
		beforeFile.Filename, afterFile.Filename,
		models.SourceHash(beforeFile.Content), models.SourceHash(afterFile.Content),
		string(summaryJson),
	)
	return err
}
