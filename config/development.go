package config

func developmentConfig() Config {
	return Config{
		Env: EnvDevelopment,
		DB: DBConfig{
			User:          "postgres",
			MaybePassword: nil,
			Host:          "localhost",
			Port:          5432,
			DBName:        "docdiff_development",
		},
		RootUrl:             "http://localhost:3000",
		Port:                3000,
		UploadMaxBytes:      15 * 1024 * 1024,
		ResultRetentionDays: 30,
		SessionHashKey:      []byte("docdiff-dev-hash-key-0123456789abcdef0123456789abcdef01234567"),
		SessionBlockKey:     []byte("docdiff-dev-block-key-0123456789"),
		AwsAccessKey:        "",
		AwsSecretAccessKey:  "",
		AwsRegion:           "us-west-2",
		ArchiveBucket:       "",
	}
}
