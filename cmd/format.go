package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/pipeline"
	"github.com/sells-group/parcel-cli/internal/store"
)

// printer groups thousands in monetary and area figures.
var printer = message.NewPrinter(language.English)

func won(v float64) string {
	return printer.Sprintf("₩%.0f", v)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatAppraisal writes the reconciled value and its three approaches to w.
func formatAppraisal(out io.Writer, r *model.AppraisalResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	s := r.Subject
	if s.ParcelID != "" {
		_, _ = fmt.Fprintf(w, "Parcel:\t%s\n", s.ParcelID)
	}
	if s.Address != "" {
		_, _ = fmt.Fprintf(w, "Address:\t%s\n", s.Address)
	}
	_, _ = fmt.Fprintf(w, "Zone:\t%s (%s)\n", s.ZoneType, s.ZoneType.Category())
	_, _ = printer.Fprintf(w, "Area:\t%.1f m²\n", s.Area)
	_, _ = fmt.Fprintf(w, "Final value:\t%s\n", won(r.FinalValue))
	_, _ = fmt.Fprintf(w, "Value per m²:\t%s\n", won(r.ValuePerSqm))
	_, _ = fmt.Fprintf(w, "Premium applied:\t%.1f%%\n", r.AppliedPremiumPct)
	_, _ = fmt.Fprintf(w, "Confidence:\t%s (%d comparables)\n", r.Confidence, len(r.Transactions))
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "APPROACH\tVALUE\tPER_M2\tWEIGHT\t")
	rows := []struct {
		name string
		r    model.ApproachResult
	}{
		{"cost", r.Cost.ApproachResult},
		{"sales", r.Sales.ApproachResult},
		{"income", r.Income.ApproachResult},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t\n", row.name, won(row.r.Value), won(row.r.ValuePerSqm), row.r.Weight)
	}
	_ = w.Flush()

	if r.Sales.FellBackToCostValue {
		_, _ = fmt.Fprintln(out, "note: no priced comparables; sales approach uses the cost value")
	}
}

// formatReadiness writes the readiness score, factors, suggestions and
// scenario ranking to w.
func formatReadiness(out io.Writer, r *model.ReadinessResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Engine:\t%s\n", r.EngineVersion)
	_, _ = fmt.Fprintf(w, "Housing type:\t%s\n", r.HousingType)
	_, _ = printer.Fprintf(w, "Target units:\t%d\n", r.TargetUnits)
	_, _ = fmt.Fprintf(w, "Raw score:\t%.2f\n", r.RawScore)
	_, _ = fmt.Fprintf(w, "Predicted score:\t%.2f\n", r.PredictedScore)
	_, _ = fmt.Fprintf(w, "Pass probability:\t%.1f%%\n", r.PassProbability*100)
	_, _ = fmt.Fprintf(w, "Risk level:\t%s\n", r.RiskLevel)
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FACTOR\tSCORE\tWEIGHT\tCONTRIB\tRATIONALE")
	for _, f := range r.Factors {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\n", f.Name, f.RawScore, f.Weight, f.Contribution, f.Rationale)
	}
	_ = w.Flush()

	if len(r.Suggestions) > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "Suggestions:")
		for _, s := range r.Suggestions {
			_, _ = fmt.Fprintf(out, "  - %s\n", s)
		}
	}

	if len(r.ScenarioComparison) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "RANK\tSCENARIO\tSCORE\tADJ\t")
		for _, s := range r.ScenarioComparison {
			mark := ""
			if s.Recommended {
				mark = "recommended"
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%.2f\t%+.2f\t%s\n", s.Rank, s.Name, s.Score, s.Adjustment, mark)
		}
		_ = w.Flush()
	}
}

// formatConsistency writes each cross-stage check to w.
func formatConsistency(out io.Writer, rep pipeline.ConsistencyReport) {
	_, _ = fmt.Fprintf(out, "Consistency: %s\n", rep.Status)
	if len(rep.Checks) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tREFERENCE\tSTAGE\tEXPECTED\tACTUAL\tOK")
	for _, c := range rep.Checks {
		ok := "yes"
		if !c.Pass {
			ok = "NO"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Field, c.Reference, c.Stage, c.Expected, c.Actual, ok)
	}
	_ = w.Flush()
}

// formatContextList writes a tabular list of stored contexts to w.
func formatContextList(out io.Writer, list []store.ContextSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPARCEL\tVERSION\tENGINE\tFINAL_VALUE\tSCORE\tRISK\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t-------\t------\t-----------\t-----\t----\t-------")
	for _, c := range list {
		parcel := c.ParcelID
		if len(parcel) > 24 {
			parcel = parcel[:21] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%s\n",
			truncateID(c.ID),
			parcel,
			c.Version,
			dash(c.EngineVersion),
			won(c.FinalValue),
			c.PredictedScore,
			dash(c.RiskLevel),
			c.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatBatch writes one line per case followed by the totals.
func formatBatch(out io.Writer, s *pipeline.BatchSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CASE\tCONTEXT\tFINAL_VALUE\tSCORE\tRISK\tERROR")
	for _, item := range s.Items {
		if item.Err != nil {
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t%s: %s\n", item.Name, dash(truncateID(item.ContextID)), item.ErrorKind, firstLine(item.Err.Error()))
			continue
		}
		ac := item.Result.Context
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t\n",
			item.Name,
			truncateID(ac.ID),
			won(ac.Appraisal.Result.FinalValue),
			ac.Readiness.PredictedScore,
			ac.Readiness.RiskLevel,
		)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nSucceeded: %d  Failed: %d\n", s.Succeeded, s.Failed)
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
