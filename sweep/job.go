package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-openapi/strfmt"
	"github.com/oqtopus-team/tomo-sweep/circuit"
	"github.com/oqtopus-team/tomo-sweep/core"
	"github.com/oqtopus-team/tomo-sweep/report"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	SWEEP_SETTING_KEY = "sweep"

	DEFAULT_TRIALS = 5
)

func DEFAULT_METHODS() []string {
	return []string{"linear_inv", "compressed_sensing"}
}

var (
	meter          = otel.Meter("tomo-sweep")
	sweepCounter   metric.Int64Counter
	sweepDurations metric.Float64Histogram
)

func init() {
	var err error
	sweepCounter, err = meter.Int64Counter("sweep.completed")
	if err != nil {
		panic(err)
	}
	sweepDurations, err = meter.Float64Histogram("sweep.duration.seconds")
	if err != nil {
		panic(err)
	}
}

type SweepSetting struct {
	Trials    int      `toml:"trials"`
	Methods   []string `toml:"methods"`
	ReportDir string   `toml:"report_dir"`
}

func NewSweepSetting() SweepSetting {
	return SweepSetting{
		Trials:  DEFAULT_TRIALS,
		Methods: DEFAULT_METHODS(),
	}
}

// SweepJob runs one evaluation sweep end to end: parse the QASM, fix the
// ground truth, sweep every setting count against the reconstructor, and
// write the report.
type SweepJob struct {
	setting    SweepSetting
	jobData    *core.JobData
	jobContext *core.JobContext

	circuit *circuit.Circuit
	truth   core.Matrix
	series  []Series

	finished bool
}

func (j *SweepJob) New(jd *core.JobData, jc *core.JobContext) core.Job {
	var setting SweepSetting
	s, ok := core.GetComponentSetting(SWEEP_SETTING_KEY)
	if !ok {
		zap.L().Debug("sweep setting is not found")
		setting = NewSweepSetting()
	} else if typed, ok := s.(SweepSetting); ok {
		setting = typed
	} else {
		// TODO: fix this long adhoc
		mapped, ok := s.(map[string]interface{})
		if !ok {
			zap.L().Debug("sweep setting is not set")
			setting = NewSweepSetting()
		} else {
			setting = NewSweepSetting()
			if t, ok := mapped["trials"].(int64); ok {
				setting.Trials = int(t)
			}
			if ms, ok := mapped["methods"].([]interface{}); ok {
				methods := make([]string, 0, len(ms))
				for _, m := range ms {
					if tag, ok := m.(string); ok {
						methods = append(methods, tag)
					}
				}
				if len(methods) > 0 {
					setting.Methods = methods
				}
			}
			if d, ok := mapped["report_dir"].(string); ok {
				setting.ReportDir = d
			}
		}
	}
	return &SweepJob{
		setting:    setting,
		jobData:    jd,
		jobContext: jc,
		finished:   false,
	}
}

func (j *SweepJob) PreProcess() {
	if err := j.preProcessImpl(); err != nil {
		zap.L().Error(fmt.Sprintf("failed to pre-process a job(%s). Reason:%s",
			j.JobData().ID, err.Error()))
		core.SetFailureWithError(j, err)
		j.finished = true
		return
	}
	return
}

func (j *SweepJob) preProcessImpl() (err error) {
	err = nil
	jd := j.JobData()
	container := core.GetSystemComponents().Container
	err = container.Invoke(
		func(d core.DBManager) error {
			if d.ExistInInnerJobIDSet(jd.ID) {
				return core.ErrorJobIDConflict
			}
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to check the existence of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return
	}
	err = container.Invoke(
		func(d core.DBManager) error {
			return d.Insert(j)
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to insert a job(%s). Reason:%s", jd.ID, err.Error()))
		return
	}
	zap.L().Debug(fmt.Sprintf("QASM:%s", jd.QASM))
	j.circuit, err = circuit.ParseQASM(jd.QASM)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse the circuit of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return
	}
	// The ground truth is fixed once per job. Amplitude simulation is
	// deterministic, so recomputing it per trial would only burn cycles.
	err = container.Invoke(
		func(sim core.Simulator) error {
			psi, simErr := sim.Simulate(j.circuit)
			if simErr != nil {
				return simErr
			}
			j.truth = core.OuterProduct(psi)
			return nil
		})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to fix the ground truth of a job(%s). Reason:%s",
			jd.ID, err.Error()))
		return
	}
	_ = container.Invoke(
		func(d core.DBManager) error {
			d.AddToInnerJobIDSet(jd.ID)
			return nil
		})
	return
}

func (j *SweepJob) Process() {
	jd := j.JobData()
	cfg, err := j.sweepConfig()
	if err != nil {
		zap.L().Error(fmt.Sprintf("bad sweep config for job(%s). Reason:%s", jd.ID, err.Error()))
		core.SetFailureWithError(j, err)
		j.finished = true
		return
	}
	zap.L().Debug(fmt.Sprintf("start sweeping job(%s)/qubits:%d/trials:%d/max_settings:%d",
		jd.ID, len(cfg.Qubits), cfg.Trials, cfg.MaxSettings))

	if jd.Info == "" {
		jd.Info = string(core.DefaultReconOptionsJson()["recon_options"])
	}

	start := time.Now()
	c := core.GetSystemComponents().Container
	err = c.Invoke(
		func(r core.Reconstructor) error {
			if o, ok := r.(core.ReconOptionsSetter); ok {
				if optErr := o.SetReconOptions(jx.Raw(jd.Info)); optErr != nil {
					return optErr
				}
			}
			series, runErr := Run(cfg, j.circuit, j.truth, r)
			if runErr != nil {
				return runErr
			}
			j.series = series
			return nil
		})
	elapsed := time.Since(start)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to sweep a job(%s). Reason:%s", jd.ID, err.Error()))
		core.SetFailureWithError(j, err)
		j.finished = true
		return
	}

	for _, s := range j.series {
		jd.Result.Series[s.Method.String()] = s.MeanErrors
	}
	jd.Result.ExecutionTime = elapsed
	sweepCounter.Add(context.Background(), 1)
	sweepDurations.Record(context.Background(), elapsed.Seconds())
	zap.L().Debug(fmt.Sprintf("swept job(%s) in %s", jd.ID, elapsed))
}

func (j *SweepJob) sweepConfig() (Config, error) {
	jd := j.JobData()
	trials := jd.Trials
	if trials == 0 {
		trials = j.setting.Trials
	}
	methods := jd.Methods
	if len(methods) == 0 {
		for _, tag := range j.setting.Methods {
			m, err := core.ToMethod(tag)
			if err != nil {
				return Config{}, err
			}
			methods = append(methods, m)
		}
	}
	if j.circuit == nil {
		return Config{}, fmt.Errorf("job(%s) has no parsed circuit", jd.ID)
	}
	return Config{
		Qubits:      j.circuit.Qubits(),
		Trials:      trials,
		MaxSettings: DefaultMaxSettings(j.circuit.NumQubits),
		Methods:     methods,
	}, nil
}

func (j *SweepJob) PostProcess() {
	j.finished = true
	jd := j.JobData()
	if jd.Status == core.FAILED {
		return
	}
	if j.setting.ReportDir != "" {
		rep := report.FromSeries(jd.ID, seriesMap(j.series))
		if err := report.Write(j.setting.ReportDir, rep); err != nil {
			// The series already live in the result, so a report write
			// failure is logged but does not fail the job.
			zap.L().Error(fmt.Sprintf("failed to write the report of a job(%s). Reason:%s",
				jd.ID, err.Error()))
		}
	}
	jd.Status = core.SUCCEEDED
	jd.Ended = strfmt.DateTime(time.Now())
	return
}

func seriesMap(series []Series) core.SeriesByMethod {
	m := make(core.SeriesByMethod, len(series))
	for _, s := range series {
		m[s.Method.String()] = s.MeanErrors
	}
	return m
}

func (j *SweepJob) IsFinished() bool {
	return j.finished
}

func (j *SweepJob) JobData() *core.JobData {
	return j.jobData
}

func (j *SweepJob) JobType() string {
	return core.SWEEP_JOB
}

func (j *SweepJob) JobContext() *core.JobContext {
	return j.jobContext
}

func (j *SweepJob) Clone() core.Job {
	cloned := &SweepJob{
		setting:    j.setting,
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
		finished:   j.finished,
	}
	if j.circuit != nil {
		cloned.circuit = j.circuit.Clone()
	}
	return cloned
}
