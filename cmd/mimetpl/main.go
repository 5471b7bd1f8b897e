// main is the mimetpl command line launcher
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/google/subcommands"
	"github.com/inbucket/mimetpl/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// version contains the build version number, populated during linking.
	version = "undefined"

	// date contains the build date, populated during linking.
	date = "undefined"
)

func main() {
	// Command line flags.
	configFile := flag.String("config", "", "YAML file overriding environment configuration.")
	logfile := flag.String("logfile", "stderr", "Write out log into the specified file.")
	logjson := flag.Bool("logjson", false, "Logs are written in JSON format.")
	subcommands.ImportantFlag("config")

	// Setup standard helpers.
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&envCmd{}, "")

	// Setup my commands.
	subcommands.Register(&interpretCmd{}, "")
	subcommands.Register(&remoteCmd{}, "")
	subcommands.Register(&serveCmd{}, "")

	flag.Parse()

	// Process configuration.
	config.Version = version
	config.BuildDate = date
	conf, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	// Logger setup.
	closeLog, err := openLog(conf.LogLevel, *logfile, *logjson)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Log error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	status := subcommands.Execute(context.Background(), conf)
	closeLog()
	os.Exit(int(status))
}

// rootConfig extracts the configuration passed to subcommands.Execute.
func rootConfig(args []interface{}) *config.Root {
	for _, a := range args {
		if c, ok := a.(*config.Root); ok {
			return c
		}
	}
	c, err := config.Process()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}
	return c
}

// openLog configures zerolog output, returns func to close logfile.
func openLog(level string, logfile string, json bool) (close func(), err error) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		return nil, fmt.Errorf("Log level %q not one of: debug, info, warn, error", level)
	}
	close = func() {}
	var w io.Writer
	color := runtime.GOOS != "windows"
	switch logfile {
	case "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		logf, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0666)
		if err != nil {
			return nil, err
		}
		bw := bufio.NewWriter(logf)
		w = bw
		color = false
		close = func() {
			_ = bw.Flush()
			_ = logf.Close()
		}
	}
	w = zerolog.SyncWriter(w)
	if json {
		log.Logger = log.Output(w)
		return close, nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !color,
	})
	return close, nil
}

func fatal(msg string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	return subcommands.ExitFailure
}

func usage(msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	return subcommands.ExitUsageError
}

// readInput reads the named file, or stdin when name is empty or "-".
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

type envCmd struct{}

func (*envCmd) Name() string     { return "env" }
func (*envCmd) Synopsis() string { return "list configuration environment variables" }
func (*envCmd) Usage() string {
	return `env:
	print the environment variables and their defaults
`
}

func (*envCmd) SetFlags(*flag.FlagSet) {}

func (*envCmd) Execute(context.Context, *flag.FlagSet, ...interface{}) subcommands.ExitStatus {
	config.Usage()
	return subcommands.ExitSuccess
}
