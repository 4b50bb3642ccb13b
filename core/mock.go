package core

import (
	"fmt"

	"github.com/oqtopus-team/tomo-sweep/circuit"
	"go.uber.org/dig"
)

const MockMaxQubits int = 4
const MockTrials int = 3

type UnimplementedJob struct {
	jobData    *JobData
	jobContext *JobContext
}

func (j *UnimplementedJob) New(jd *JobData, jc *JobContext) Job {
	return &UnimplementedJob{
		jobData:    jd,
		jobContext: jc,
	}
}

func (j *UnimplementedJob) PreProcess() {
	return
}

func (j *UnimplementedJob) Process() {
	return
}

func (j *UnimplementedJob) PostProcess() {
	return
}

func (j *UnimplementedJob) IsFinished() bool {
	return j.JobData().Status == SUCCEEDED || j.JobData().Status == FAILED
}

func (j *UnimplementedJob) JobData() *JobData {
	return j.jobData
}

func (j *UnimplementedJob) JobType() string {
	return j.jobData.JobType
}

func (j *UnimplementedJob) JobContext() *JobContext {
	return j.jobContext
}

func (j *UnimplementedJob) Clone() Job {
	cloned := &UnimplementedJob{
		jobData:    j.jobData.Clone(),
		jobContext: j.jobContext,
	}
	return cloned
}

// zeroStateSimulator reports every circuit as left in |0...0>.
type zeroStateSimulator struct{}

func (zeroStateSimulator) Setup(*Conf) error { return nil }

func (zeroStateSimulator) Simulate(c *circuit.Circuit) ([]complex128, error) {
	n := c.NumQubits
	if n == 0 {
		n = 1
	}
	psi := make([]complex128, 1<<n)
	psi[0] = 1
	return psi, nil
}

// truthReconstructor always returns the zero-state density matrix, so every
// estimate matches the zeroStateSimulator's ground truth exactly.
type truthReconstructor struct{}

func (truthReconstructor) Setup(*Conf) error { return nil }
func (truthReconstructor) GetHealth() error  { return nil }
func (truthReconstructor) TearDown()         {}

func (truthReconstructor) Reconstruct(c *circuit.Circuit, qubits []int, settings int, method Method) (Matrix, error) {
	dim := 1 << len(qubits)
	m := NewMatrix(dim)
	m.Set(0, 0, 1)
	return m, nil
}

type failingReconstructor struct {
	truthReconstructor
}

func (failingReconstructor) Reconstruct(c *circuit.Circuit, qubits []int, settings int, method Method) (Matrix, error) {
	return Matrix{}, fmt.Errorf("reconstruction did not converge")
}

type unimplementedDB struct {
	innerJobIDSet map[string]struct{}
}

func (u *unimplementedDB) Setup(DBChan, *Conf) error {
	u.innerJobIDSet = make(map[string]struct{})
	return nil
}
func (u *unimplementedDB) Insert(Job) error { return nil }
func (u *unimplementedDB) Get(jobID string) (Job, error) {
	return &UnimplementedJob{}, nil
}
func (u *unimplementedDB) Update(Job) error    { return nil }
func (u *unimplementedDB) Delete(string) error { return nil }
func (u *unimplementedDB) AddToInnerJobIDSet(jobID string) {
	u.innerJobIDSet[jobID] = struct{}{}
}
func (u *unimplementedDB) RemoveFromInnerJobIDSet(jobID string) {
	delete(u.innerJobIDSet, jobID)
}
func (u *unimplementedDB) ExistInInnerJobIDSet(jobID string) bool {
	_, ok := u.innerJobIDSet[jobID]
	return ok
}

type unimplementedScheduler struct{}

func (u *unimplementedScheduler) Setup(*Conf) error           { return nil }
func (u *unimplementedScheduler) Start() error                { return nil }
func (u *unimplementedScheduler) HandleJob(_ Job)             { return }
func (u *unimplementedScheduler) GetCurrentQueueSize() int    { return 0 }
func (u *unimplementedScheduler) IsOverRefillThreshold() bool { return false }

func SCWithUnimplementedContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() Simulator { return &zeroStateSimulator{} })
	c.Provide(func() Reconstructor { return &truthReconstructor{} })
	c.Provide(func() DBManager {
		db := &unimplementedDB{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithFailingReconstructor() *SystemComponents {
	c := dig.New()
	c.Provide(func() Simulator { return &zeroStateSimulator{} })
	c.Provide(func() Reconstructor { return &failingReconstructor{} })
	c.Provide(func() DBManager {
		db := &unimplementedDB{}
		db.Setup(nil, &Conf{})
		return db
	})
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithDBContainer() *SystemComponents {
	c := dig.New()
	c.Provide(func() Simulator { return &zeroStateSimulator{} })
	c.Provide(func() Reconstructor { return &truthReconstructor{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Scheduler { return &unimplementedScheduler{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithScheduler(sc Scheduler) *SystemComponents {
	c := dig.New()
	c.Provide(func() Simulator { return &zeroStateSimulator{} })
	c.Provide(func() Reconstructor { return &truthReconstructor{} })
	c.Provide(func() DBManager { return &MemoryDB{} })
	c.Provide(func() Scheduler { return sc })
	s := NewSystemComponents(c)
	s.Setup(&Conf{QueueMaxSize: 1000})
	return s
}
