package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
	jsoniter "github.com/json-iterator/go"
	"github.com/oqtopus-team/tomo-sweep/core"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Report is the on-disk record of one finished sweep: every method's mean
// Frobenius errors, indexed by setting count.
type Report struct {
	JobID     string              `json:"job_id"`
	CreatedAt strfmt.DateTime     `json:"created_at"`
	Series    core.SeriesByMethod `json:"series"`
}

func FromSeries(jobID string, series core.SeriesByMethod) *Report {
	return &Report{
		JobID:     jobID,
		CreatedAt: strfmt.DateTime(time.Now()),
		Series:    series,
	}
}

// Write persists the report under dir as both pretty JSON and CSV,
// named after the job ID. The directory is created if missing.
func Write(dir string, r *Report) error {
	if r.JobID == "" {
		return fmt.Errorf("report has no job ID")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, r.JobID+".json"), r); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, r.JobID+".csv"), r); err != nil {
		return err
	}
	zap.L().Debug(fmt.Sprintf("wrote report for job(%s) to %s", r.JobID, dir))
	return nil
}

func writeJSON(path string, r *Report) error {
	b, err := jsonIter.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pretty.Pretty(b), 0o644)
}

// writeCSV lays the series out one row per setting count, one column per
// method, methods in alphabetical order so the file is stable across runs.
func writeCSV(path string, r *Report) error {
	methods := make([]string, 0, len(r.Series))
	points := 0
	for m, errs := range r.Series {
		methods = append(methods, m)
		if len(errs) > points {
			points = len(errs)
		}
	}
	sort.Strings(methods)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"settings"}, methods...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < points; i++ {
		row := make([]string, 0, len(methods)+1)
		row = append(row, strconv.Itoa(i+1))
		for _, m := range methods {
			errs := r.Series[m]
			if i < len(errs) {
				row = append(row, strconv.FormatFloat(errs[i], 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
