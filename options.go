package mainstay

import (
	"log/slog"
	"os"

	"github.com/mainstaykit/mainstay/internal/config"
	"github.com/mainstaykit/mainstay/stats"
)

// ///////////////////////////////////////////////
// Options
// ///////////////////////////////////////////////

// Option customizes [Run].
type Option func(*options)

type options struct {
	dataDir        string
	cfg            *config.Config
	log            *slog.Logger
	logLevel       *slog.LevelVar
	collector      stats.Collector
	streamCapacity int
	args           []string
	debugRun       bool
}

func buildOptions(opts []Option) *options {
	o := &options{
		debugRun: debugDefault,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDataDir enables the file-backed ambient environment rooted at dir:
// config file loading and seeding, the rotating log file, crash report
// storage, the control endpoint, and the config watcher. Without a data
// directory, built-in defaults apply and logs go to stderr.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// WithConfig supplies the configuration directly, bypassing file loading
// even when a data directory is set.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger supplies the logger to use instead of building one. Dynamic
// log level reload is disabled in this mode.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithCollector installs a stats collector for lifecycle instrumentation.
func WithCollector(c stats.Collector) Option {
	return func(o *options) { o.collector = c }
}

// WithStreamCapacity overrides the termination event stream capacity from
// the config file.
func WithStreamCapacity(n int) Option {
	return func(o *options) { o.streamCapacity = n }
}

// WithArgs sets the retained command line. Defaults to a copy of os.Args.
func WithArgs(args []string) Option {
	return func(o *options) { o.args = args }
}

// WithDebugRun selects the execution mode explicitly: true invokes the
// run body directly so faults reach an attached debugger raw; false runs
// under the crash guard. The default comes from the mainstaydebug build
// tag.
func WithDebugRun(debug bool) Option {
	return func(o *options) { o.debugRun = debug }
}

func argsFromProcess() []string {
	return append([]string(nil), os.Args...)
}
