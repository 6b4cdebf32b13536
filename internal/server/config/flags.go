package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/campuskit/authcore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session TTL, hours
//	-u string   directory base URL (versioned root)
//	-k string   directory master service token
//	-o int      directory timeout, seconds
//	-m string   managerial department name (admin role)
//	-h string   head-office branch code
//	-l string   comma-separated admin allow-list
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-u", "-k", "-o", "-m", "-h", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTLHours := fs.Int("t", int(config.SessionTTL.Hours()), "session TTL (in hours)")

	fs.StringVar(&config.DirectoryBaseURL, "u", config.DirectoryBaseURL, "directory base URL")
	fs.StringVar(&config.DirectoryToken, "k", config.DirectoryToken, "directory service token")

	directoryTimeoutSeconds := fs.Int("o", int(config.DirectoryTimeout.Seconds()), "directory timeout (in seconds)")

	fs.StringVar(&config.ManagerialDepartment, "m", config.ManagerialDepartment, "managerial department name")
	fs.StringVar(&config.HeadOfficeBranch, "h", config.HeadOfficeBranch, "head office branch code")

	allowList := fs.String("l", "", "comma-separated admin allow-list")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTLHours) * time.Hour
	config.DirectoryTimeout = time.Duration(*directoryTimeoutSeconds) * time.Second

	if *allowList != "" {
		parts := strings.Split(*allowList, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		config.AdminAllowList = parts
	}
}
