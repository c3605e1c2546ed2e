package scheduler

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type testSchedulerConfig struct {
	url   string
	queue string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("NewClient without redis url should fail")
	}
}

func TestEnqueueReportAckLandsInConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + mr.Addr(), queue: "greenbin"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer client.Close()

	payload := ReportAckPayload{ReportID: "7b0d9c4e-9a1f-4d7a-8c0e-2f6a51b3d9aa"}
	if err := client.EnqueueReportAck(context.Background(), payload); err != nil {
		t.Fatalf("EnqueueReportAck returned error: %v", err)
	}

	var queued bool
	for _, key := range mr.Keys() {
		if strings.Contains(key, "{greenbin}") {
			queued = true
			break
		}
	}
	if !queued {
		t.Fatalf("no task data under the greenbin queue, keys = %v", mr.Keys())
	}
}

func TestEnqueueMunicipalityDigestLandsInQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + mr.Addr(), queue: "greenbin"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	defer client.Close()

	payload := MunicipalityDigestPayload{Municipality: "nuernberg"}
	if err := client.EnqueueMunicipalityDigest(context.Background(), payload); err != nil {
		t.Fatalf("EnqueueMunicipalityDigest returned error: %v", err)
	}

	if len(mr.Keys()) == 0 {
		t.Fatal("nothing written to redis")
	}
}
