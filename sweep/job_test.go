//go:build unit
// +build unit

package sweep

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oqtopus-team/tomo-sweep/core"
	"github.com/stretchr/testify/assert"
)

func testJobData(t *testing.T) *core.JobData {
	t.Helper()
	jd := core.NewJobData()
	jd.ID = uuid.NewString()
	jd.QASM = "OPENQASM 2.0;\nqreg q[1];\nh q[0];\n"
	jd.Trials = core.MockTrials
	jd.Shots = 100
	jd.Methods = core.AllMethods()
	jd.JobType = core.SWEEP_JOB
	jd.Status = core.READY
	return jd
}

func newSweepJob(t *testing.T, jd *core.JobData) *SweepJob {
	t.Helper()
	jc, err := core.NewJobContext()
	assert.Nil(t, err)
	return (&SweepJob{}).New(jd, jc).(*SweepJob)
}

func TestSweepJobLifecycle(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	j := newSweepJob(t, jd)

	j.PreProcess()
	assert.False(t, j.IsFinished())
	assert.NotEqual(t, core.FAILED, jd.Status)

	j.Process()
	assert.False(t, j.IsFinished())

	j.PostProcess()
	assert.True(t, j.IsFinished())
	assert.Equal(t, core.SUCCEEDED, jd.Status)

	// The mock oracle always returns the exact truth, so every method's
	// curve is all zeros, one entry per setting count in [1, 4).
	assert.Equal(t, len(core.AllMethods()), len(jd.Result.Series))
	for _, m := range core.AllMethods() {
		errs, ok := jd.Result.Series[m.String()]
		assert.True(t, ok)
		assert.Equal(t, 3, len(errs))
		for _, e := range errs {
			assert.Equal(t, 0.0, e)
		}
	}
	assert.Greater(t, int64(jd.Result.ExecutionTime), int64(0))
}

func TestSweepJobPreProcessRejectsBadQASM(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	jd.QASM = "qreg q[1];\nfoo q[0];\n"
	j := newSweepJob(t, jd)

	j.PreProcess()
	assert.True(t, j.IsFinished())
	assert.Equal(t, core.FAILED, jd.Status)
	assert.Equal(t, "unsupported gate: foo", jd.Result.Message)
}

func TestSweepJobPreProcessRejectsDuplicateID(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	first := newSweepJob(t, jd)
	first.PreProcess()
	assert.False(t, first.IsFinished())

	dup := newSweepJob(t, jd.Clone())
	dup.PreProcess()
	assert.True(t, dup.IsFinished())
	assert.Equal(t, core.FAILED, dup.JobData().Status)
	assert.Equal(t, core.ErrorJobIDConflict.Error(), dup.JobData().Result.Message)
}

func TestSweepJobProcessFailsOnOracleError(t *testing.T) {
	s := core.SCWithFailingReconstructor()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	j := newSweepJob(t, jd)

	j.PreProcess()
	assert.False(t, j.IsFinished())

	j.Process()
	assert.True(t, j.IsFinished())
	assert.Equal(t, core.FAILED, jd.Status)
	// the whole sweep is aborted, nothing partial is kept
	assert.Equal(t, 0, len(jd.Result.Series))
	assert.Contains(t, jd.Result.Message, "reconstruction did not converge")
}

func TestSweepJobConfigDefaults(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	jd.Trials = 0
	jd.Methods = nil
	j := newSweepJob(t, jd)

	j.PreProcess()
	assert.False(t, j.IsFinished())

	cfg, err := j.sweepConfig()
	assert.Nil(t, err)
	// falls back to the component setting defaults
	assert.Equal(t, DEFAULT_TRIALS, cfg.Trials)
	assert.Equal(t, len(DEFAULT_METHODS()), len(cfg.Methods))
	assert.Equal(t, 4, cfg.MaxSettings)
	assert.Equal(t, []int{0}, cfg.Qubits)
}

func TestSweepJobProcessFillsDefaultReconOptions(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	j := newSweepJob(t, jd)
	j.PreProcess()
	j.Process()

	assert.Equal(t, string(core.DefaultReconOptionsJson()["recon_options"]), jd.Info)
}

func TestSweepJobProcessKeepsGivenReconOptions(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	jd.Info = `{"lasso_threshold":0.2}`
	j := newSweepJob(t, jd)
	j.PreProcess()
	j.Process()

	assert.Equal(t, `{"lasso_threshold":0.2}`, jd.Info)
	assert.NotEqual(t, core.FAILED, jd.Status)
}

func TestSweepJobClone(t *testing.T) {
	s := core.SCWithDBContainer()
	defer s.TearDown()
	core.ResetSetting()

	jd := testJobData(t)
	j := newSweepJob(t, jd)
	j.PreProcess()

	cloned := j.Clone().(*SweepJob)
	assert.False(t, cloned == j)
	assert.False(t, cloned.JobData() == j.JobData())
	assert.Equal(t, j.JobData().ID, cloned.JobData().ID)
	assert.False(t, cloned.circuit == j.circuit)
}

func TestSweepJobType(t *testing.T) {
	j := &SweepJob{}
	assert.Equal(t, core.SWEEP_JOB, j.JobType())
}
