package config

import (
	"fmt"
	"os"
)

type Config struct {
	Env                 Env
	DB                  DBConfig
	RootUrl             string
	Port                int
	UploadMaxBytes      int64
	ResultRetentionDays int
	SessionHashKey      []byte
	SessionBlockKey     []byte
	AwsAccessKey        string
	AwsSecretAccessKey  string
	AwsRegion           string
	ArchiveBucket       string
}

const AuthTokenLength = 32

type Env int

const (
	EnvDevelopment Env = iota
	EnvTesting
	EnvProduction
)

func (e Env) IsDevOrTest() bool {
	return e == EnvDevelopment || e == EnvTesting
}

type DBConfig struct {
	User          string
	MaybePassword *string
	Host          string
	Port          int
	DBName        string
}

func (c DBConfig) DSN() string {
	password := ""
	if c.MaybePassword != nil {
		password = fmt.Sprintf(" password=%s", *c.MaybePassword)
	}
	return fmt.Sprintf("user=%s%s host=%s port=%d dbname=%s", c.User, password, c.Host, c.Port, c.DBName)
}

var Cfg Config

func init() {
	if isTesting {
		Cfg = testingConfig()
		return
	}

	_, ok := os.LookupEnv("DOCDIFF_ENV")
	if !ok {
		Cfg = developmentConfig()
		return
	}

	Cfg = productionConfig()
}

func mustLookupEnv(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		panic(fmt.Errorf("%s environment variable not set", key))
	}
	return value
}
