// Package output renders processing results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/supplymatch/orderassign/pkg/application/dto"
)

// Render writes the result in the specified format.
func Render(w io.Writer, result *dto.ProcessResult, format string) error {
	switch format {
	case "json":
		return renderJSON(w, result)
	case "text", "pretty":
		return renderText(w, result)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func renderJSON(w io.Writer, result *dto.ProcessResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// renderText creates a human-readable summary.
func renderText(w io.Writer, result *dto.ProcessResult) error {
	fmt.Fprintf(w, "Order %s\n", result.OrderID)
	fmt.Fprintf(w, "=======%s\n\n", dashes(len(result.OrderID)))

	fmt.Fprintf(w, "Run ID:       %s\n", result.RunID)
	fmt.Fprintf(w, "Success:      %t\n", result.Success)
	fmt.Fprintf(w, "Order Status: %s\n", result.OrderStatus)
	if result.Error != "" {
		fmt.Fprintf(w, "Error:        %s\n", result.Error)
	}
	fmt.Fprintf(w, "Items:        %d total, %d for solver, %d cannot solve\n\n",
		result.Stats.TotalItems, result.Stats.ItemsForSolver, result.Stats.ItemsCannotSolve)

	if details := result.StatusDetails; details != nil {
		fmt.Fprintf(w, "Line Status:\n")
		fmt.Fprintf(w, "  Fully closable:     %d\n", details.Counts.FullyClosed)
		fmt.Fprintf(w, "  Partially closable: %d\n", details.Counts.PartiallyClosed)
		fmt.Fprintf(w, "  Cannot close:       %d\n", details.Counts.CannotClose)
		for _, entry := range details.Breakdown.CannotClose {
			fmt.Fprintf(w, "    line %-4d %s\n", entry.LineNo, entry.Reason)
		}
		fmt.Fprintln(w)
	}

	if len(result.Assignments) > 0 {
		fmt.Fprintf(w, "Assignments:\n")
		fmt.Fprintf(w, "%-6s %-12s %-12s %-10s %-8s %-10s\n",
			"Line", "Supplier", "Pack", "Price", "Qty", "Shortage")
		fmt.Fprintf(w, "%-6s %-12s %-12s %-10s %-8s %-10s\n",
			"------", "------------", "------------", "----------", "--------", "----------")
		for _, a := range result.Assignments {
			shortage := "-"
			if a.ShortagePct != nil {
				shortage = fmt.Sprintf("%.1f%%", *a.ShortagePct*100)
			}
			pack := a.PackCode
			if pack == "" {
				pack = "-"
			}
			fmt.Fprintf(w, "%-6d %-12d %-12s %-10.2f %-8d %-10s\n",
				a.LineNo, a.SupplierID, pack, a.Price, a.Qty, shortage)
		}
		if result.NumSuppliers != nil {
			fmt.Fprintf(w, "\nSuppliers used: %d\n", *result.NumSuppliers)
		}
		fmt.Fprintln(w)
	}

	if sd := result.SolverDetails; sd != nil {
		fmt.Fprintf(w, "Solver:\n")
		fmt.Fprintf(w, "  Engine:      %s\n", sd.Solver)
		fmt.Fprintf(w, "  Status:      %s\n", sd.Status)
		if sd.Reason != "" {
			fmt.Fprintf(w, "  Reason:      %s\n", sd.Reason)
		}
		fmt.Fprintf(w, "  Variables:   %d\n", sd.ModelStats.Variables)
		fmt.Fprintf(w, "  Constraints: %d\n", sd.ModelStats.Constraints)
		fmt.Fprintf(w, "  Wall time:   %.3fs\n", sd.WallTimeSeconds)
		fmt.Fprintln(w)
	}

	if diag := result.Diagnostics; diag != nil {
		for _, line := range diag.Lines {
			if len(line.RejectionSummary) == 0 {
				continue
			}
			fmt.Fprintf(w, "Line %d rejections:\n", line.LineNo)
			reasons := make([]string, 0, len(line.RejectionSummary))
			for reason := range line.RejectionSummary {
				reasons = append(reasons, reason)
			}
			sort.Strings(reasons)
			for _, reason := range reasons {
				fmt.Fprintf(w, "  %-28s %d\n", reason, line.RejectionSummary[reason])
			}
		}
	}

	return nil
}

func dashes(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = '='
	}
	return string(out)
}
