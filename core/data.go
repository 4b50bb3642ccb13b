package core

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/mohae/deepcopy"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

type Status int // Status of a sweep job as seen by callers.

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	SUBMITTED Status = iota // Accepted but not handled yet.
	READY                   // Has never been processed. All new jobs start here.
	RUNNING                 // The sweep loop is executing.
	SUCCEEDED               // Finished successfully.
	FAILED                  // Finished with failure.
	CANCELLED               // Finished with cancellation.
)

func (s Status) String() string {
	switch s {
	case SUBMITTED:
		return "submitted"
	case READY:
		return "ready"
	case RUNNING:
		return "running"
	case SUCCEEDED:
		return "succeeded"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

func ToStatus(s string) (Status, error) {
	switch s {
	case "submitted":
		return SUBMITTED, nil
	case "ready":
		return READY, nil
	case "running":
		return RUNNING, nil
	case "succeeded":
		return SUCCEEDED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", s)
	}
}

// Method selects which reconstruction algorithm the Reconstructor runs.
// It is a closed enumeration so that an invalid tag is a construction-time
// error rather than a runtime surprise inside the sweep loop.
type Method int

const (
	LinearInv Method = iota
	CompressedSensing
	Lasso
)

func (m Method) String() string {
	switch m {
	case LinearInv:
		return "linear_inv"
	case CompressedSensing:
		return "compressed_sensing"
	case Lasso:
		return "lasso"
	default:
		return "unknown"
	}
}

func ToMethod(s string) (Method, error) {
	switch s {
	case "linear_inv":
		return LinearInv, nil
	case "compressed_sensing":
		return CompressedSensing, nil
	case "lasso":
		return Lasso, nil
	default:
		return 0, fmt.Errorf("unknown method: %s", s)
	}
}

// AllMethods returns every reconstruction method in wire-tag order.
func AllMethods() []Method {
	return []Method{LinearInv, CompressedSensing, Lasso}
}

// SeriesByMethod maps a method tag to its mean Frobenius errors, ordered by
// increasing measurement-setting count, one entry per count.
type SeriesByMethod map[string][]float64

func (s SeriesByMethod) String() string {
	st, err := jsonIter.Marshal(s)
	if err != nil {
		zap.L().Error("Failed to marshal core.SeriesByMethod")
		return ""
	}
	return string(st)
}

type Result struct {
	Series        SeriesByMethod `json:"series"`
	Message       string         `json:"message"`
	ExecutionTime time.Duration  `json:"execution_time"`
}

func NewResult() *Result {
	return &Result{
		Series: make(SeriesByMethod),
	}
}

func (r *Result) ToString() string {
	st, err := jsonIter.Marshal(r)
	if err != nil {
		zap.L().Error("Failed to marshal core.Result")
		return ""
	}
	st = pretty.Pretty(st)
	return string(st)
}

// JobData carries a sweep request and its outcome.
type JobData struct {
	ID      string
	Status  Status
	QASM    string
	Trials  int
	Shots   int
	Methods []Method
	Result  *Result
	JobType string
	Created strfmt.DateTime
	Ended   strfmt.DateTime
	Info    string // raw options JSON forwarded to the reconstructor
}

func NewJobData() *JobData {
	return &JobData{
		Result:  NewResult(),
		Created: strfmt.DateTime(time.Now()),
	}
}

func (jd *JobData) Clone() *JobData {
	c := deepcopy.Copy(jd).(*JobData)
	c.Created = *jd.Created.DeepCopy()
	c.Ended = *jd.Ended.DeepCopy()
	return c
}
