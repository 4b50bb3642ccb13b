package scheduler

import (
	"fmt"
	"sync"

	"github.com/oqtopus-team/tomo-sweep/core"
	"go.uber.org/zap"
)

type statusHistory map[string][]core.Status

type NormalScheduler struct {
	queue         *NormalQueue
	statusHistory statusHistory
	mu            sync.Mutex
}

type jobInScheduler struct {
	job      core.Job
	finished *sync.WaitGroup
}

func (n *NormalScheduler) Setup(conf *core.Conf) error {
	n.queue = &NormalQueue{}
	n.queue.Setup(conf)
	n.statusHistory = make(statusHistory)
	return nil
}

func (n *NormalScheduler) Start() error {
	go func() {
		for {
			zap.L().Debug("checking the queue...")
			jis, err := n.queue.Dequeue(true)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to get a job from queue. Reason:%s", err))
				continue
			}
			jid := jis.job.JobData().ID
			zap.L().Debug(fmt.Sprintf("processing job:%s", jid))
			st := core.RUNNING
			n.appendHistory(jid, st)
			jis.job.JobData().Status = st
			jis.job.JobContext().DBChan <- jis.job.Clone()
			processSafely(jis.job)
			zap.L().Debug(fmt.Sprintf("finished to process job(%s), status:%s", jid, jis.job.JobData().Status))
			jis.finished.Done()
		}
	}()
	return nil
}

func processSafely(j core.Job) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("recovered from panic while processing job(%s): %v",
				j.JobData().ID, r))
			j.JobData().Status = core.FAILED
		}
	}()
	j.Process()
}

func (n *NormalScheduler) HandleJob(j core.Job) {
	zap.L().Debug(fmt.Sprintf("starting to handle job(%s) in %s", j.JobData().ID, j.JobData().Status))
	go func() {
		defer func() {
			zap.L().Debug(fmt.Sprintf("status history job(%s): %v", j.JobData().ID, n.history(j.JobData().ID)))
			n.dropHistory(j.JobData().ID)
		}()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) HandleJobForTest(j core.Job, wg *sync.WaitGroup) {
	go func() {
		defer wg.Done()
		n.handleImpl(j)
	}()
}

func (n *NormalScheduler) handleImpl(j core.Job) {
	jid := j.JobData().ID
	st := j.JobData().Status // must be ready
	n.appendHistory(jid, st)
	zap.L().Debug(fmt.Sprintf("handling job(%s)in %s starting", jid, st))
	if j.JobData().Status != core.READY {
		zap.L().Error(
			fmt.Sprintf("finished to handle job(%s) with unexpected status:%s", jid, j.JobData().Status.String()))
		// not write to DB
		return
	}
	zap.L().Debug(fmt.Sprintf("handling job(%s). start pre-processing", jid))
	j.PreProcess()
	j.JobContext().DBChan <- j.Clone()
	if j.IsFinished() {
		zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after pre-processing", jid))
		n.appendHistory(jid, j.JobData().Status)
		return
	}
	var wg sync.WaitGroup
	wg.Add(1)
	jis := &jobInScheduler{
		job:      j,
		finished: &wg,
	}
	n.queue.queueChan <- jis
	wg.Wait() // wait for processing
	zap.L().Debug(fmt.Sprintf("Processed Job Status: %s", j.JobData().Status))
	if j.JobData().Status == core.FAILED {
		zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after processing with status:%s",
			jid, j.JobData().Status.String()))
		n.appendHistory(jid, j.JobData().Status)
		j.JobContext().DBChan <- j.Clone()
		return
	}
	zap.L().Debug(fmt.Sprintf("handling job(%s). start post-processing", jid))
	j.PostProcess()
	zap.L().Debug(fmt.Sprintf("finished to handle job(%s) after post-processing with status:%s",
		jid, j.JobData().Status.String()))
	n.appendHistory(jid, j.JobData().Status)
	j.JobContext().DBChan <- j.Clone()
}

func (n *NormalScheduler) appendHistory(jobID string, st core.Status) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusHistory[jobID] = append(n.statusHistory[jobID], st)
}

func (n *NormalScheduler) history(jobID string) []core.Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.statusHistory[jobID]
}

func (n *NormalScheduler) dropHistory(jobID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.statusHistory, jobID)
}

func (n *NormalScheduler) GetCurrentQueueSize() int {
	return n.queue.fifo.GetLen()
}

func (n *NormalScheduler) IsOverRefillThreshold() bool {
	return n.queue.refillThreshold <= n.queue.fifo.GetLen()
}
