package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/rotamanager/internal/flagx"
)

var serverFlags = []string{
	"-a", "-d", "-s", "-t", "-v", "-l",
	"-m", "-n", "-x", "-y", "-f",
	"-u", "-p", "-b", "-g", "-e", "-k",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session token validity, minutes
//	-v int      verification token validity, minutes
//	-l string   verification link base URL
//	-m string   SMTP host
//	-n int      SMTP port
//	-x string   SMTP username
//	-y string   SMTP password
//	-f string   sender address for verification mail
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-k int      export link validity, minutes
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by
// other loaders (-c, -env) do not fail parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")
	verificationValidity := fs.Int("v", int(config.VerificationTokenValidityDuration.Minutes()), "verification_token_validity_duration (in minutes)")

	fs.StringVar(&config.VerificationLinkBaseURL, "l", config.VerificationLinkBaseURL, "verification link base URL")
	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "n", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUsername, "x", config.SMTPUsername, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "y", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPFrom, "f", config.SMTPFrom, "verification mail sender")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	exportValidity := fs.Int("k", int(config.ExportLinkValidityDuration.Minutes()), "export_link_validity_duration (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.VerificationTokenValidityDuration = time.Duration(*verificationValidity) * time.Minute
	config.ExportLinkValidityDuration = time.Duration(*exportValidity) * time.Minute
}
