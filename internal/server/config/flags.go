package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-m int      max open database connections
//	-o string   OTP store: postgres | redis
//	-r string   Redis address
//	-n string   notifier: brevo | smtp | log
//	-t int      OTP validity, seconds
//	-k int      token validity, days
//	-l string   log level
//	-cors string  comma separated CORS origins
//
// os.Args is filtered with flagx.FilterArgs first so the bootstrap flags
// (-c, -e) do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-m", "-o", "-r", "-n", "-t", "-k", "-l", "-cors"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.DatabaseMaxConns, "m", config.DatabaseMaxConns, "max open database connections")
	fs.StringVar(&config.OtpStore, "o", config.OtpStore, "OTP store (postgres|redis)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.NotifierKind, "n", config.NotifierKind, "notifier (brevo|smtp|log)")

	otpTTL := fs.Int("t", int(config.OtpTTL.Seconds()), "otp validity (in seconds)")
	tokenTTL := fs.Int("k", int(config.TokenTTL.Hours()/24), "token validity (in days)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	cors := fs.String("cors", strings.Join(config.CORSAllowOrigins, ","), "CORS allowed origins, comma separated")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// whole-unit flags only replace durations that were given explicitly
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.OtpTTL = time.Duration(*otpTTL) * time.Second
		case "k":
			config.TokenTTL = time.Duration(*tokenTTL) * 24 * time.Hour
		case "cors":
			config.CORSAllowOrigins = splitList(*cors)
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
