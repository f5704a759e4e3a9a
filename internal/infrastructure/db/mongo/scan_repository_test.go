package mongo

import (
	"testing"
	"time"

	"github.com/sitelens/scan-engine/internal/core/domain"
	"github.com/sitelens/scan-engine/internal/core/ports"
)

func TestStatusUpdateSet_CompletedAlwaysRecordsProcessingTime(t *testing.T) {
	now := time.Now().UTC()

	// A sub-millisecond scan still completes with a recorded duration.
	set := statusUpdateSet(ports.ScanStatusUpdate{
		Status:           domain.StatusCompleted,
		ScanData:         &domain.ScanResult{Mode: "structured"},
		ProcessingTimeMS: 0,
	}, now)

	ms, ok := set["processing_time_ms"]
	if !ok {
		t.Fatal("processing_time_ms missing for completed scan")
	}
	if ms != int64(0) {
		t.Errorf("processing_time_ms = %v, want 0", ms)
	}
	if set["completed_at"] != now {
		t.Errorf("completed_at = %v, want %v", set["completed_at"], now)
	}
	if _, ok := set["scan_data"]; !ok {
		t.Error("scan_data missing")
	}
}

func TestStatusUpdateSet_FailedSetsMessageNotDuration(t *testing.T) {
	now := time.Now().UTC()

	set := statusUpdateSet(ports.ScanStatusUpdate{
		Status:       domain.StatusFailed,
		ErrorMessage: "capture exhausted",
	}, now)

	if set["error_message"] != "capture exhausted" {
		t.Errorf("error_message = %v", set["error_message"])
	}
	if _, ok := set["processing_time_ms"]; ok {
		t.Error("failed scan must not record processing_time_ms")
	}
	if set["completed_at"] != now {
		t.Error("failed scan must record completed_at")
	}
}

func TestStatusUpdateSet_ProcessingSetsOnlyStatus(t *testing.T) {
	set := statusUpdateSet(ports.ScanStatusUpdate{Status: domain.StatusProcessing}, time.Now().UTC())

	if len(set) != 1 || set["status"] != domain.StatusProcessing {
		t.Errorf("set = %v, want status only", set)
	}
}
