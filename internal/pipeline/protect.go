package pipeline

import (
	"time"

	"github.com/sells-group/parcel-cli/internal/model"
)

// ProtectAppraisalData returns a deep copy of ctx whose appraisal is stamped
// protected at now. ctx itself is left unprotected for audit; callers must
// run every later stage against the returned copy. Protecting an already
// protected context only moves the lock timestamp.
func ProtectAppraisalData(ctx *model.AnalysisContext, now time.Time) (*model.AnalysisContext, error) {
	if ctx == nil || ctx.Appraisal.IsEmpty() {
		return nil, &model.IncompletePipelineError{
			Reason:  "nothing to protect",
			Missing: []string{string(model.StageAppraisal)},
		}
	}

	out := ctx.Clone()
	out.Appraisal.Protected = true
	out.Appraisal.LockTimestamp = now.UTC()
	return out, nil
}
