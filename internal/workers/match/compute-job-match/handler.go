// internal/workers/match/compute-job-match/handler.go
package computejobmatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"nomad-workers/internal/batch"
	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/common/metrics"
	"nomad-workers/internal/common/validation"
)

const (
	TaskType = "compute-job-match"
)

const inputSchema = `{
	"type": "object",
	"required": ["userId", "jobId"],
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"jobId": {"type": "string", "minLength": 1}
	}
}`

type Handler struct {
	config *Config
	driver *batch.Driver
	schema *validation.CompiledSchema
	logger logger.Logger
}

func NewHandler(config *Config, driver *batch.Driver, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		driver: driver,
		schema: validation.MustCompileSchema(inputSchema),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	payload := []byte(job.Variables)
	if err := h.schema.Validate(payload); err != nil {
		h.failJob(client, job, err)
		return nil
	}

	var input Input
	if err := json.Unmarshal(payload, &input); err != nil {
		h.failJob(client, job, errors.NewInvalidInputError("parse input: "+err.Error()))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	started := time.Now()
	output, err := h.execute(ctx, &input)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(started).Seconds())

	if err != nil {
		h.failJob(client, job, err)
		return nil
	}

	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	rec, err := h.driver.ComputeMatchByID(ctx, input.UserID, input.JobID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("match computed", map[string]interface{}{
		"userId": rec.UserID,
		"jobId":  rec.JobID,
		"score":  rec.OverallScore,
		"level":  rec.QualityLevel,
	})

	return &Output{
		UserID:       rec.UserID,
		JobID:        rec.JobID,
		MatchScore:   rec.OverallScore,
		QualityLevel: rec.QualityLevel,
		QualityTier:  rec.QualityTier,
		MatchFactors: rec.ComponentScores,
		Status:       string(rec.Status),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, jobErr error) {
	bpmnErr := errors.ConvertToBPMNError(errors.AsStandard(jobErr))
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    bpmnErr.Code,
		"errorMessage": bpmnErr.Message,
		"retryable":    bpmnErr.Retryable,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute is the test seam around the job-client plumbing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
