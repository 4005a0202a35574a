//go:build testing

package config

const isTesting = true

func testingConfig() Config {
	devCfg := developmentConfig()
	return Config{
		Env: EnvTesting,
		DB: DBConfig{
			User:          devCfg.DB.User,
			MaybePassword: devCfg.DB.MaybePassword,
			Host:          devCfg.DB.Host,
			Port:          devCfg.DB.Port,
			DBName:        "docdiff_test",
		},
		RootUrl:             devCfg.RootUrl,
		Port:                devCfg.Port,
		UploadMaxBytes:      devCfg.UploadMaxBytes,
		ResultRetentionDays: devCfg.ResultRetentionDays,
		SessionHashKey:      devCfg.SessionHashKey,
		SessionBlockKey:     devCfg.SessionBlockKey,
		AwsAccessKey:        devCfg.AwsAccessKey,
		AwsSecretAccessKey:  devCfg.AwsSecretAccessKey,
		AwsRegion:           devCfg.AwsRegion,
		ArchiveBucket:       devCfg.ArchiveBucket,
	}
}
