package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReportAck = "reports.ack"

const TaskMunicipalityDigest = "reports.municipality_digest"

type ReportAckPayload struct {
	ReportID string `json:"reportId"`
}

type MunicipalityDigestPayload struct {
	Municipality string `json:"municipality"`
}

func NewReportAckTask(payload ReportAckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportAck, data), nil
}

func ParseReportAckPayload(task *asynq.Task) (ReportAckPayload, error) {
	var payload ReportAckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReportAckPayload{}, err
	}
	return payload, nil
}

func NewMunicipalityDigestTask(payload MunicipalityDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMunicipalityDigest, data), nil
}

func ParseMunicipalityDigestPayload(task *asynq.Task) (MunicipalityDigestPayload, error) {
	var payload MunicipalityDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MunicipalityDigestPayload{}, err
	}
	return payload, nil
}
