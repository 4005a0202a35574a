package config

import (
	"encoding/hex"
	"net/url"
	"os"
	"strconv"
)

func productionConfig() Config {
	databaseUrl := mustLookupEnv("DATABASE_URL")
	dbUri, err := url.Parse(databaseUrl)
	if err != nil {
		panic(err)
	}
	dbPassword, ok := dbUri.User.Password()
	if !ok {
		panic("Password is not in the database url")
	}
	dbPort, err := strconv.Atoi(dbUri.Port())
	if err != nil {
		panic(err)
	}
	dbName := dbUri.Path[1:]

	port := 3000
	if portStr, ok := os.LookupEnv("PORT"); ok {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			panic(err)
		}
	}

	sessionHashKeyHex := mustLookupEnv("SESSION_HASH_KEY")
	sessionHashKey, err := hex.DecodeString(sessionHashKeyHex)
	if err != nil {
		panic(err)
	}

	sessionBlockKeyHex := mustLookupEnv("SESSION_BLOCK_KEY")
	sessionBlockKey, err := hex.DecodeString(sessionBlockKeyHex)
	if err != nil {
		panic(err)
	}

	retentionDays := 30
	if retentionStr, ok := os.LookupEnv("RESULT_RETENTION_DAYS"); ok {
		retentionDays, err = strconv.Atoi(retentionStr)
		if err != nil {
			panic(err)
		}
	}

	return Config{
		Env: EnvProduction,
		DB: DBConfig{
			User:          dbUri.User.Username(),
			MaybePassword: &dbPassword,
			Host:          dbUri.Hostname(),
			Port:          dbPort,
			DBName:        dbName,
		},
		RootUrl:             mustLookupEnv("ROOT_URL"),
		Port:                port,
		UploadMaxBytes:      15 * 1024 * 1024,
		ResultRetentionDays: retentionDays,
		SessionHashKey:      sessionHashKey,
		SessionBlockKey:     sessionBlockKey,
		AwsAccessKey:        os.Getenv("AWS_ACCESS_KEY"),
		AwsSecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AwsRegion:           os.Getenv("AWS_REGION"),
		ArchiveBucket:       os.Getenv("ARCHIVE_BUCKET"),
	}
}
