package core

type NonSecretConf struct {
	DevMode              bool
	DisableStdoutLog     bool
	EnableFileLog        bool
	LogDir               string
	LogLevel             string
	LogRotationMaxDays   int
	MaxQubits            int
	Trials               int
	Shots                int
	QueueMaxSize         int
	QueueRefillThreshold int
	ReportDir            string
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	conf := &NonSecretConf{
		DevMode:              c.DevMode,
		DisableStdoutLog:     c.DisableStdoutLog,
		EnableFileLog:        c.EnableFileLog,
		LogDir:               c.LogDir,
		LogLevel:             c.LogLevel,
		LogRotationMaxDays:   c.LogRotationMaxDays,
		MaxQubits:            c.MaxQubits,
		Trials:               c.Trials,
		Shots:                c.Shots,
		QueueMaxSize:         c.QueueMaxSize,
		QueueRefillThreshold: c.QueueRefillThreshold,
		ReportDir:            c.ReportDir,
	}

	CurrentInfo = &Info{
		Conf: conf,
	}
}
