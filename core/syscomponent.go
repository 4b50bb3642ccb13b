package core

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/jx"
	"github.com/oqtopus-team/tomo-sweep/circuit"
	"go.uber.org/dig"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	systemComponents        *SystemComponents
	defaultReconOptionsJson map[string]jx.Raw
)

func init() {
	dro := DEFAULT_RECON_OPTIONS()
	droj := make(map[string]jx.Raw)
	droj["recon_options"] = jx.Raw(dro)
	defaultReconOptionsJson = droj
}

func DefaultReconOptionsJson() map[string]jx.Raw {
	return defaultReconOptionsJson
}

// DEFAULT_RECON_OPTIONS is the options JSON forwarded to the reconstructor
// when a sweep request carries none.
func DEFAULT_RECON_OPTIONS() json.RawMessage {
	type defaultReconOptions struct {
		LassoThreshold float64 `json:"lasso_threshold"`
	}
	dro := defaultReconOptions{
		LassoThreshold: 0.05,
	}
	b, err := json.Marshal(dro)
	if err != nil {
		panic(err)
	}
	return b
}

type DBChan chan Job

type Channels struct {
	DBChan
	// when more channel is needed, add here
}

func NewChannels() *Channels {
	return &Channels{
		DBChan: make(DBChan),
	}
}

func (c *Channels) Close() {
	close(c.DBChan)
}

func (c *Channels) Check() error {
	if c.DBChan == nil {
		return fmt.Errorf("DBChan is nil")
	}
	return nil
}

// Simulator is the ground-truth collaborator. Simulate returns the exact
// amplitudes of the circuit's final state; the caller turns them into a
// density matrix with OuterProduct.
type Simulator interface {
	Setup(*Conf) error
	Simulate(c *circuit.Circuit) ([]complex128, error)
}

// Reconstructor is the tomography oracle. Reconstruct returns a density
// matrix estimate for the circuit's state from the given number of
// measurement settings, using the selected method. Estimates are only
// deterministic up to the oracle's internal sampling randomness.
type Reconstructor interface {
	Setup(*Conf) error
	GetHealth() error
	Reconstruct(c *circuit.Circuit, qubits []int, settings int, method Method) (Matrix, error)
	TearDown()
}

// ReconOptionsSetter is implemented by reconstructors that accept the raw
// options JSON a job carries in JobData.Info.
type ReconOptionsSetter interface {
	SetReconOptions(jx.Raw) error
}

type Scheduler interface {
	Setup(*Conf) error
	Start() error
	HandleJob(Job)
	// Queue Data Access
	GetCurrentQueueSize() int
	IsOverRefillThreshold() bool
}

type DBManager interface {
	Setup(DBChan, *Conf) error
	Insert(Job) error
	Get(string) (Job, error)
	Update(Job) error
	Delete(string) error

	AddToInnerJobIDSet(string)
	RemoveFromInnerJobIDSet(string)
	ExistInInnerJobIDSet(string) bool
}

type SystemComponents struct {
	*dig.Container
	*Channels
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{
		con,
		NewChannels(),
	}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	dbChan := s.DBChan

	zap.L().Debug("Setting up simulator")
	var err error
	err = s.Invoke(
		func(sim Simulator) error {
			return sim.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up reconstructor")
	err = s.Invoke(
		func(r Reconstructor) error {
			return r.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up scheduler")
	err = s.Invoke(
		func(sc Scheduler) error {
			return sc.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up DB")
	err = s.Invoke(
		func(d DBManager) error {
			return d.Setup(dbChan, conf)
		})
	if err != nil {
		return err
	}

	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() {
	err := multierr.Combine(
		s.Invoke(
			func(r Reconstructor) {
				r.TearDown()
			}),
	)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to tear down components/reason:%s", err))
	}
	s.Channels.Close()
}

func (s *SystemComponents) StartContainer() error {
	return s.Container.Invoke(
		func(sc Scheduler) error {
			return sc.Start()
		})
}

func (s *SystemComponents) GetCurrentQueueSize() int {
	var size int
	s.Invoke(
		func(sc Scheduler) {
			size = sc.GetCurrentQueueSize()
		})
	return size
}

func (s *SystemComponents) IsQueueOverRefillThreshold() bool {
	var over bool
	s.Invoke(
		func(sc Scheduler) {
			over = sc.IsOverRefillThreshold()
		})
	return over
}
