package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "ROTA_"

// parseEnv overlays Config with ROTA_* environment variables.
//
// A .env file is loaded first when present: the path given with -env, or
// ".env" in the working directory. Variables already set in the process
// environment win over the file, as godotenv.Load never overrides them.
// Durations are Go duration strings ("15m"). Malformed values panic.
func parseEnv(config *Config) {
	path := flagx.EnvFilePath()
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	lookupString("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	lookupString("DATABASE_DSN", &config.DatabaseDSN)
	lookupString("SECRET_KEY", &config.SecretKey)
	lookupDuration("SESSION_TOKEN_VALIDITY", &config.SessionTokenValidityDuration)
	lookupDuration("VERIFICATION_TOKEN_VALIDITY", &config.VerificationTokenValidityDuration)
	lookupString("VERIFICATION_LINK_BASE_URL", &config.VerificationLinkBaseURL)
	lookupString("SMTP_HOST", &config.SMTPHost)
	lookupInt("SMTP_PORT", &config.SMTPPort)
	lookupString("SMTP_USERNAME", &config.SMTPUsername)
	lookupString("SMTP_PASSWORD", &config.SMTPPassword)
	lookupString("SMTP_FROM", &config.SMTPFrom)
	lookupString("S3_ROOT_USER", &config.S3RootUser)
	lookupString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	lookupString("S3_BUCKET", &config.S3Bucket)
	lookupString("S3_REGION", &config.S3Region)
	lookupString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	lookupDuration("EXPORT_LINK_VALIDITY", &config.ExportLinkValidityDuration)
}

func lookupString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func lookupInt(name string, dst *int) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func lookupDuration(name string, dst *time.Duration) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
