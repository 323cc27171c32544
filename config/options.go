package config

const (
	defaultVersion           = "0.1.0"
	defaultLogFile           = "liber.log"
	defaultLogLevel          = "debug"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8080
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/liber"
	defaultDSN               = defaultData + "/liber.db"
	defaultWorkerPoolSize    = 4
	defaultMaxUploadSize     = 100
	defaultSweepInterval     = 60
	defaultRateLimit         = 25
	defaultRateBurst         = 50
)

// Why use mapstructure instead of json, if use json as field tags, it can't recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// Version is the version of the application
	Version string `mapstructure:"version"`
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data: the database, ebook files and covers
	Data string `mapstructure:"data"`
	// WorkerPoolSize is the number of background ingest workers
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
	// MaxUploadSize is the maximum size of an upload, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// SweepInterval is how often the overdue sweep runs, in minutes
	SweepInterval int `mapstructure:"sweep_interval"`
	// RateLimit is the sustained number of requests per second per client
	RateLimit int `mapstructure:"rate_limit"`
	// RateBurst is the per-client burst allowance
	RateBurst int `mapstructure:"rate_burst"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		Version:           defaultVersion,
		LogFile:           defaultLogFile,
		LogLevel:          defaultLogLevel,
		LogFileMaxSize:    defaultLogFileMaxSize,
		LogFileMaxBackups: defaultLogFileMaxBackups,
		LogFileMaxAge:     defaultLogFileMaxAge,
		LogCompress:       defaultLogCompress,
		DSN:               defaultDSN,
		Port:              defaultPort,
		Host:              defaultHost,
		Data:              defaultData,
		WorkerPoolSize:    defaultWorkerPoolSize,
		MaxUploadSize:     defaultMaxUploadSize,
		SweepInterval:     defaultSweepInterval,
		RateLimit:         defaultRateLimit,
		RateBurst:         defaultRateBurst,
	}
	return Opts
}
