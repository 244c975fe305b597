package monitoring

import (
	"testing"

	"mealer/internal/models"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor(nil)
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordDispatch(t *testing.T) {
	m := NewMonitor(nil)

	m.RecordDispatch(models.OpAddOrder)
	m.RecordDispatch(models.OpAddOrder)
	m.RecordCompletion(models.OpAddOrder, true)
	m.RecordCompletion(models.OpAddOrder, false)

	metrics := m.GetMetrics()

	if metrics["dispatch_add_order"] != 2 {
		t.Errorf("Expected 2 dispatches, got %v", metrics["dispatch_add_order"])
	}
	if metrics["completion_add_order_success"] != 1 {
		t.Errorf("Expected 1 success, got %v", metrics["completion_add_order_success"])
	}
	if metrics["completion_add_order_failure"] != 1 {
		t.Errorf("Expected 1 failure, got %v", metrics["completion_add_order_failure"])
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor(nil)
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	// Our test metric should be gone, but uptime should still be there
	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	// Uptime should still be present (it's added on GetMetrics call)
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}
