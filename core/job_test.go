//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// noopSweepJob is the minimal registerable job of the sweep type.
type noopSweepJob struct {
	*UnimplementedJob
}

func (j *noopSweepJob) New(jd *JobData, jc *JobContext) Job {
	u := &UnimplementedJob{}
	return &noopSweepJob{
		UnimplementedJob: u.New(jd, jc).(*UnimplementedJob),
	}
}

func (j *noopSweepJob) JobType() string {
	return SWEEP_JOB
}

func TestJobManager(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := NewJobManager(
		&noopSweepJob{},
	)
	assert.Nil(t, err)
	assert.NotNil(t, jm)
	as := jm.AcceptableJobTypes()
	assert.Equal(t, len(as), 1)
	assert.Equal(t, as[0], "sweep")

	err = jm.RegisterJob(&noopSweepJob{})
	assert.EqualError(t, err, "job:sweep is already registered")

	as = jm.AcceptableJobTypes()
	assert.Equal(t, len(as), 1)
	assert.Equal(t, as[0], "sweep")

	jc, err := NewJobContext()
	assert.Nil(t, err)

	job, err := jm.NewJobFromJobData(
		&JobData{ID: "test"},
		jc,
	)

	assert.Nil(t, err)
	assert.Equal(t, job.JobData().ID, "test")
}

func TestNewJobWithValidation(t *testing.T) {
	s := SCWithDBContainer()
	defer s.TearDown()

	jm, err := NewJobManager()
	assert.Nil(t, err)
	assert.NotNil(t, jm)
	jm.RegisterJob(&noopSweepJob{})

	testQASM := "OPENQASM 2.0;\nqreg q[2];\nh q[0];\ncx q[0], q[1];\n"

	tests := []struct {
		name      string
		param     *JobParam
		wantError string
	}{
		{
			name: "empty job ID",
			param: &JobParam{
				QASM:    testQASM,
				Trials:  MockTrials,
				Shots:   100,
				Methods: AllMethods(),
			},
			wantError: "jobID is empty",
		},
		{
			name: "0 trials",
			param: &JobParam{
				JobID:   uuid.NewString(),
				QASM:    testQASM,
				Trials:  0,
				Shots:   100,
				Methods: AllMethods(),
			},
			wantError: "trials(0) must be greater than 0",
		},
		{
			name: "negative trials",
			param: &JobParam{
				JobID:   uuid.NewString(),
				QASM:    testQASM,
				Trials:  -2,
				Shots:   100,
				Methods: AllMethods(),
			},
			wantError: "trials(-2) must be greater than 0",
		},
		{
			name: "0 shots",
			param: &JobParam{
				JobID:   uuid.NewString(),
				QASM:    testQASM,
				Trials:  MockTrials,
				Shots:   0,
				Methods: AllMethods(),
			},
			wantError: "shots(0) must be greater than 0",
		},
		{
			name: "no methods",
			param: &JobParam{
				JobID:  uuid.NewString(),
				QASM:   testQASM,
				Trials: MockTrials,
				Shots:  100,
			},
			wantError: "no reconstruction methods",
		},
		{
			name: "valid sweep",
			param: &JobParam{
				JobID:   uuid.NewString(),
				QASM:    testQASM,
				Trials:  MockTrials,
				Shots:   100,
				Methods: AllMethods(),
			},
			wantError: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jc, err := NewJobContext()
			assert.Nil(t, err)
			job, err := jm.NewJobWithValidation(tt.param, jc)
			if tt.wantError == "" {
				assert.Nil(t, err)
				assert.Equal(t, job.JobData().ID, tt.param.JobID)
				assert.Equal(t, job.JobData().Trials, tt.param.Trials)
				assert.Equal(t, job.JobData().Methods, tt.param.Methods)
				assert.Equal(t, job.JobData().JobType, SWEEP_JOB)
			} else {
				assert.NotNil(t, err)
				assert.Equal(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestCloneJob(t *testing.T) {
	s := SCWithUnimplementedContainer()
	defer s.TearDown()
	jm, err := NewJobManager(&noopSweepJob{})
	assert.Nil(t, err)

	jd := &JobData{
		ID:     "test",
		QASM:   "test_qasm",
		Trials: 5,
		Shots:  1000,
	}
	jc, err := NewJobContext()
	assert.Nil(t, err)
	org, err := jm.NewJobFromJobData(jd, jc)
	assert.Nil(t, err)
	cloned := org.Clone()
	assert.False(t, cloned == org)
	assert.False(t, cloned.JobData() == org.JobData(),
		"cloned.JobData()=%p, org.JobData()=%p", cloned.JobData(), org.JobData())
	assert.Equal(t, cloned.JobData().ID, org.JobData().ID)
	assert.Equal(t, cloned.JobData().QASM, org.JobData().QASM)
	assert.Equal(t, cloned.JobData().Trials, org.JobData().Trials)

	org.JobData().ID = "test2"
	assert.NotEqual(t, cloned.JobData().ID, org.JobData().ID)

	org.JobData().Status = RUNNING
	cloned.JobData().Status = SUCCEEDED
	assert.NotEqual(t, cloned.JobData().Status, org.JobData().Status)
}
