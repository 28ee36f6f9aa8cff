package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/supplymatch/orderassign/pkg/application/dto"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

func sampleResult() *dto.ProcessResult {
	num := 1
	return &dto.ProcessResult{
		Success:     true,
		OrderID:     "ORD-1",
		RunID:       "run-1",
		OrderStatus: entities.FullyClosed,
		StatusDetails: &entities.StatusDetails{
			OrderStatus: entities.FullyClosed,
			Breakdown:   entities.StatusBreakdown{FullyClosed: []int{1}},
			Counts:      entities.StatusCounts{FullyClosed: 1},
		},
		Assignments: []dto.AssignmentView{
			{LineNo: 1, SupplierID: 7, Price: 5.0, Qty: 10},
		},
		NumSuppliers: &num,
		Stats:        entities.OrderStats{TotalItems: 1, ItemsForSolver: 1},
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleResult(), "json"); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["order_id"] != "ORD-1" {
		t.Errorf("order_id = %v, want ORD-1", decoded["order_id"])
	}
	if decoded["success"] != true {
		t.Errorf("success = %v, want true", decoded["success"])
	}
}

func TestRenderText(t *testing.T) {
	for _, format := range []string{"text", "pretty"} {
		var buf bytes.Buffer
		if err := Render(&buf, sampleResult(), format); err != nil {
			t.Fatalf("Render(%s) failed: %v", format, err)
		}
		out := buf.String()
		if !strings.Contains(out, "ORD-1") {
			t.Errorf("%s output missing order id:\n%s", format, out)
		}
		if !strings.Contains(out, "Suppliers used: 1") {
			t.Errorf("%s output missing supplier count:\n%s", format, out)
		}
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleResult(), "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
