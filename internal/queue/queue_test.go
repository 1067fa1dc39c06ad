package queue

import (
	"strings"
	"testing"
)

func TestQueueNames(t *testing.T) {
	if EmailQueueName != "email" {
		t.Fatalf("EmailQueueName = %s, want email", EmailQueueName)
	}
	if EmailDLQName != "dlq.email" {
		t.Fatalf("EmailDLQName = %s, want dlq.email", EmailDLQName)
	}
}

func TestEmailMessageValidate(t *testing.T) {
	msg := EmailMessage{TaskID: "t1", CorrelationID: "c1"}
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	empty := EmailMessage{TaskID: "  "}
	err := empty.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for blank task id")
	}
	if !strings.Contains(err.Error(), "taskId") {
		t.Fatalf("error = %v, want mention of taskId", err)
	}
}
