package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"github.com/oklog/run"

	"github.com/oqtopus-team/tomo-sweep/common"
	"github.com/oqtopus-team/tomo-sweep/core"
	"github.com/oqtopus-team/tomo-sweep/log"
	"github.com/oqtopus-team/tomo-sweep/recon"
	"github.com/oqtopus-team/tomo-sweep/scheduler"
	"github.com/oqtopus-team/tomo-sweep/simulator"
	"github.com/oqtopus-team/tomo-sweep/sweep"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var engine *Engine

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	engine = &Engine{}
	setParser(engine)
}

type Engine struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	DBManager     string `long:"db" description:"db" default:"memory" choice:"memory" env:"TOMO_SWEEP_DB_MANAGER_TYPE"`
	Simulator     string `long:"simulator" description:"simulator-type" default:"local" choice:"local" env:"TOMO_SWEEP_SIMULATOR_TYPE"`
	Reconstructor string `long:"reconstructor" description:"reconstructor-type" default:"sampled" choice:"sampled" env:"TOMO_SWEEP_RECONSTRUCTOR_TYPE"`
	Scheduler     string `long:"scheduler" description:"scheduler-type" default:"normal" env:"TOMO_SWEEP_SCHEDULER_TYPE"`
}

func setParser(engine *Engine) {
	parser = flags.NewParser(engine, flags.Default)
	parser.ShortDescription = "tomo sweep"
	parser.LongDescription = "evaluation sweeps of quantum state tomography reconstruction methods."
	parser.AddCommand("run", "run sweeps", "run an evaluation sweep for each QASM file", newRunCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to pasre flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (e *Engine) provideDIContainer() (c *dig.Container, err error) {
	c = dig.New()
	err = nil
	err = c.Provide(func() (core.Simulator, error) {
		switch e.DIContainerParameters.Simulator {
		case "local":
			return &simulator.Local{}, nil
		default:
			return &simulator.Local{}, fmt.Errorf("%s is an unknown Simulator", e.DIContainerParameters.Simulator)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func(sim core.Simulator) (core.Reconstructor, error) {
		switch e.DIContainerParameters.Reconstructor {
		case "sampled":
			return recon.NewSampled(sim), nil
		default:
			return recon.NewSampled(sim), fmt.Errorf("%s is an unknown Reconstructor", e.DIContainerParameters.Reconstructor)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() core.Scheduler { return &scheduler.NormalScheduler{} })
	if err != nil {
		return &dig.Container{}, err
	}
	err = c.Provide(func() (core.DBManager, error) {
		switch e.DIContainerParameters.DBManager {
		case "memory":
			return &core.MemoryDB{}, nil
		default:
			return &core.MemoryDB{}, fmt.Errorf("%s is an unknown DB", e.DIContainerParameters.DBManager)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

func (e *Engine) startCore(conf *core.Conf) error {
	core.NewJobManager(
		&sweep.SweepJob{},
	)
	err := core.GetSystemComponents().StartContainer()
	if err != nil {
		return err
	}
	core.SetInfo(conf)
	return nil
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder //Not use UnixTime
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotater)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		debugCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stdout),
			level)
		cores = append(cores, debugCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return &rotate.RotateLogs{}, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "tomosweep-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func main() {
	parse()
}

type runCmd struct{}

func newRunCmd() *runCmd {
	return &runCmd{}
}

func (c *runCmd) Execute(args []string) error {
	logger := setZap(engine.Conf)
	defer logger.Sync()

	if len(args) == 0 {
		return fmt.Errorf("no QASM files given")
	}

	core.ResetSetting()
	registerSetting()
	zap.L().Debug(fmt.Sprintf("Registered setting"))
	if err := core.ParseSettingFromPath(engine.Conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}

	s := setupSystemComponents(engine.Conf)
	defer s.TearDown()

	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
	}
	rc, err := core.NewRunContextWithSettingPath(engine.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	engine.startCore(engine.Conf)

	zap.L().Debug("Setting up run-group")
	if err := c.setupRunGroup(rc, args); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setup run group. Reason:%s", err))
		return err
	}

	if err := rc.Run(); err != nil {
		if _, ok := err.(sweepsDone); ok {
			return nil
		}
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		os.Exit(1)
	}

	return nil
}

// sweepsDone signals the run group that every submitted sweep finished.
type sweepsDone struct{}

func (sweepsDone) Error() string { return "all sweeps finished" }

func (c *runCmd) setupRunGroup(rc *core.RunContext, qasmPaths []string) error {
	rc.Add(
		run.SignalHandler(
			rc.Context,
			os.Interrupt))
	ctx, cancel := context.WithCancel(rc.Context)
	rc.Add(
		func() error {
			if err := submitAndWait(ctx, qasmPaths); err != nil {
				return err
			}
			return sweepsDone{}
		},
		func(error) {
			cancel()
		})
	core.SetRunContext(rc)
	return nil
}

func submitAndWait(ctx context.Context, qasmPaths []string) error {
	jc, err := core.NewJobContext()
	if err != nil {
		return err
	}
	jobIDs := make([]string, 0, len(qasmPaths))
	for _, path := range qasmPaths {
		qasm, err := common.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		param := &core.JobParam{
			JobID:   uuid.NewString(),
			QASM:    qasm,
			Trials:  engine.Conf.Trials,
			Shots:   engine.Conf.Shots,
			Methods: core.AllMethods(),
			JobType: core.SWEEP_JOB,
		}
		job, err := core.GetJobManager().NewJobWithValidation(param, jc)
		if err != nil {
			return fmt.Errorf("failed to make a job from %s: %w", path, err)
		}
		job.JobData().Status = core.READY
		sc := core.GetSystemComponents()
		if err := sc.Invoke(
			func(s core.Scheduler) error {
				s.HandleJob(job)
				return nil
			}); err != nil {
			return err
		}
		zap.L().Info(fmt.Sprintf("submitted job(%s) for %s", param.JobID, path))
		jobIDs = append(jobIDs, param.JobID)
	}
	return waitForJobs(ctx, jobIDs)
}

func waitForJobs(ctx context.Context, jobIDs []string) error {
	pending := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		pending[id] = struct{}{}
	}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		for id := range pending {
			job := core.GetJob(id)
			if job == nil {
				continue
			}
			jd := job.JobData()
			switch jd.Status {
			case core.SUCCEEDED, core.FAILED, core.CANCELLED:
				zap.L().Info(fmt.Sprintf("job(%s) finished with status:%s", id, jd.Status))
				fmt.Printf("job:%s status:%s\n%s\n", id, jd.Status, jd.Result.ToString())
				delete(pending, id)
			}
		}
	}
	return nil
}

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger
}

func setupSystemComponents(conf *core.Conf) *core.SystemComponents {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", engine.DIContainerParameters))

	container, err := engine.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		panic(err)
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up Container. Reason:%s", err.Error()))
		panic(err)
	}
	return s
}

func registerSetting() {
	core.RegisterSetting(recon.RECON_SETTING_KEY, recon.NewReconSetting())
	ss := sweep.NewSweepSetting()
	ss.Trials = engine.Conf.Trials
	ss.ReportDir = engine.Conf.ReportDir
	core.RegisterSetting(sweep.SWEEP_SETTING_KEY, ss)
}
