package core

type Conf struct {
	Version              string `long:"version" description:"version of sweep engine" env:"TOMO_SWEEP_VERSION"`
	DevMode              bool   `long:"dev-mode" description:"run in dev mode" env:"TOMO_SWEEP_DEV_MODE"`
	DisableStdoutLog     bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"TOMO_SWEEP_DISABLE_STDOUT_LOG"`
	EnableFileLog        bool   `long:"enable-file-log" description:"enable log in file" env:"TOMO_SWEEP_ENABLE_FILE_LOG"`
	LogDir               string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"TOMO_SWEEP_LOG_DIR"`
	LogLevel             string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"TOMO_SWEEP_LOG_LEVEL"`
	LogRotationMaxDays   int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"TOMO_SWEEP_LOG_ROTATION_MAX_DAYS"`
	MaxQubits            int    `long:"max-qubits" description:"largest circuit accepted for a sweep" default:"6" env:"TOMO_SWEEP_MAX_QUBITS"`
	Trials               int    `long:"trials" description:"trial repetitions per setting count" default:"5" env:"TOMO_SWEEP_TRIALS"`
	Shots                int    `long:"shots" description:"shots per measurement setting" default:"1000" env:"TOMO_SWEEP_SHOTS"`
	QueueMaxSize         int    `long:"queue-max-size" description:"queue max size" default:"100" env:"TOMO_SWEEP_QUEUE_MAX_SIZE"`
	QueueRefillThreshold int    `long:"queue-refill-threshold" description:"queue refill threshold" default:"10" env:"TOMO_SWEEP_QUEUE_REFILL_THRESHOLD"`
	ReportDir            string `long:"report-dir" description:"directory for sweep reports" default:"./shares/reports" env:"TOMO_SWEEP_REPORT_DIR"`
	SettingPath          string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"TOMO_SWEEP_SETTING_PATH"`
}
