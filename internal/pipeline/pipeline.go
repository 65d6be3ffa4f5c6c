package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/parcel-cli/internal/appraisal"
	"github.com/sells-group/parcel-cli/internal/comparable"
	"github.com/sells-group/parcel-cli/internal/config"
	"github.com/sells-group/parcel-cli/internal/metrics"
	"github.com/sells-group/parcel-cli/internal/model"
	"github.com/sells-group/parcel-cli/internal/readiness"
	"github.com/sells-group/parcel-cli/internal/resilience"
	"github.com/sells-group/parcel-cli/internal/stages"
	"github.com/sells-group/parcel-cli/internal/store"
)

// Input is one parcel to appraise and score, as delivered by the geocoding,
// zoning, land-price, transaction and premium collaborators.
type Input struct {
	Name                 string
	Subject              model.Subject
	Transactions         []model.ComparableTransaction
	Premium              model.Premium
	HousingType          model.HousingType
	TargetUnits          int
	Restrictions         []string
	BenchmarkPricePerSqm float64
}

// Stage run statuses.
const (
	StageStatusComplete = "complete"
	StageStatusFailed   = "failed"
)

// StageRun records one executed stage.
type StageRun struct {
	Stage      model.Stage `json:"stage"`
	Status     string      `json:"status"`
	DurationMS int64       `json:"duration_ms"`
	Error      string      `json:"error,omitempty"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Context is the protected context every downstream stage read from.
	Context *model.AnalysisContext `json:"context"`
	// Original is the context as the appraisal left it, before locking.
	Original    *model.AnalysisContext `json:"-"`
	Consistency ConsistencyReport      `json:"consistency"`
	Stages      []StageRun             `json:"stages"`
}

// Pipeline runs the appraisal and every downstream stage in dependency order.
type Pipeline struct {
	cfg         *config.Config
	store       store.Store
	graph       *Graph
	ranker      *comparable.Ranker
	reconciler  *appraisal.Reconciler
	engine      *readiness.Engine
	scenarioCfg stages.ScenarioConfig
	retry       resilience.RetryConfig
	metrics     *metrics.Metrics
	now         func() time.Time
}

// New creates a Pipeline. st may be nil, in which case contexts are not persisted.
func New(cfg *config.Config, st store.Store) (*Pipeline, error) {
	if cfg == nil {
		return nil, eris.New("pipeline: nil config")
	}
	if err := appraisal.ValidateConfig(cfg.Appraisal); err != nil {
		return nil, err
	}
	if err := comparable.ValidateConfig(cfg.Ranker); err != nil {
		return nil, eris.Wrap(err, "pipeline: ranker config")
	}
	strategy, err := readiness.StrategyFor(cfg.Readiness.Engine, cfg.Readiness)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: readiness strategy")
	}
	engine, err := readiness.NewEngine(strategy, cfg.Readiness, cfg.Benchmark)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:         cfg,
		store:       st,
		graph:       DefaultGraph,
		ranker:      comparable.NewRanker(cfg.Ranker),
		reconciler:  appraisal.NewReconciler(cfg.Appraisal),
		engine:      engine,
		scenarioCfg: stages.DefaultScenarioConfig(),
		retry:       resilience.FromConfig(cfg.Store.Retry),
		now:         time.Now,
	}, nil
}

// Engine returns the readiness engine version in use.
func (p *Pipeline) Engine() string {
	return p.engine.Strategy().Version()
}

// WithMetrics records stage and run outcomes on m.
func (p *Pipeline) WithMetrics(m *metrics.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// Run appraises in.Subject, locks the appraisal, then runs the remaining
// stages in graph order. The finished context is saved when a store is set.
// On failure the partial result is returned with the error.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	res, err := p.run(ctx, in)
	outcome := "ok"
	if err != nil {
		outcome = model.KindOf(err)
	} else {
		p.metrics.ObserveScore(res.Context.Readiness.PredictedScore)
	}
	p.metrics.IncrementRun(outcome, p.Engine())
	return res, err
}

func (p *Pipeline) run(ctx context.Context, in Input) (*Result, error) {
	log := zap.L().With(zap.String("case", in.Name), zap.String("parcel", in.Subject.ParcelID))
	log.Info("pipeline: starting run")

	ht := in.HousingType
	if ht == "" {
		ht = model.HousingGeneral
	}

	ac := model.NewAnalysisContext(p.cfg.Pipeline.Version, p.now())
	result := &Result{Context: ac}
	log = log.With(zap.String("context_id", ac.ID))

	track := func(stage model.Stage, fn func() error) error {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		run := StageRun{Stage: stage, Status: StageStatusComplete, DurationMS: elapsed.Milliseconds()}
		if err != nil {
			run.Status = StageStatusFailed
			run.Error = err.Error()
			log.Error("pipeline: stage failed", zap.String("stage", string(stage)), zap.Error(err))
		} else {
			log.Debug("pipeline: stage complete", zap.String("stage", string(stage)), zap.Int64("duration_ms", run.DurationMS))
		}
		p.metrics.ObserveStage(string(stage), run.Status, elapsed)
		result.Stages = append(result.Stages, run)
		return err
	}

	if err := track(model.StageAppraisal, func() error {
		txs := comparable.FillDistances(in.Subject, in.Transactions)
		ranked := p.ranker.Rank(in.Subject.Area, txs)
		r, err := p.reconciler.Reconcile(in.Subject, ranked, in.Premium)
		if err != nil {
			return err
		}
		ac.Appraisal = &model.AppraisalEntry{Result: *r}
		return ValidateAppraisalComplete(ac, p.cfg.Pipeline.MinTransactions)
	}); err != nil {
		return result, eris.Wrap(err, "pipeline: appraisal")
	}

	locked, err := ProtectAppraisalData(ac, p.now())
	if err != nil {
		return result, eris.Wrap(err, "pipeline: protect appraisal")
	}
	result.Original = ac
	result.Context = locked
	ac = locked

	for _, stage := range p.graph.Order() {
		if stage == model.StageAppraisal {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, eris.Wrap(err, "pipeline: cancelled")
		}
		if err := p.graph.ValidateOrder(ac, stage); err != nil {
			return result, eris.Wrapf(err, "pipeline: %s", stage)
		}
		if err := track(stage, func() error { return p.runStage(ac, stage, in, ht, result, log) }); err != nil {
			return result, eris.Wrapf(err, "pipeline: %s", stage)
		}
	}

	if p.store != nil {
		retry := p.retry
		logRetry := resilience.RetryLogger("save_context", zap.String("context_id", ac.ID))
		retry.OnRetry = func(attempt int, err error) {
			p.metrics.IncrementSaveRetry()
			logRetry(attempt, err)
		}
		err := resilience.Do(ctx, retry, func(ctx context.Context) error {
			return p.store.SaveContext(ctx, ac)
		})
		if err != nil {
			return result, eris.Wrap(err, "pipeline: save context")
		}
	}

	log.Info("pipeline: run complete",
		zap.Float64("final_value", ac.Appraisal.Result.FinalValue),
		zap.Float64("predicted_score", ac.Readiness.PredictedScore),
		zap.String("risk_level", string(ac.Readiness.RiskLevel)),
	)
	return result, nil
}

// runStage writes stage's sub-document into ac.
func (p *Pipeline) runStage(ac *model.AnalysisContext, stage model.Stage, in Input, ht model.HousingType, result *Result, log *zap.Logger) error {
	view, ok := ac.AppraisalView()
	if !ok {
		return &model.MissingPrerequisiteError{Stage: stage, Prerequisite: model.StageAppraisal}
	}

	switch stage {
	case model.StageDiagnosis:
		ac.Diagnosis = stages.Diagnose(view, stages.DiagnosisInput{
			Region:               in.Subject.Region,
			BenchmarkPricePerSqm: in.BenchmarkPricePerSqm,
			Restrictions:         in.Restrictions,
		})
	case model.StageCapacity:
		ac.Capacity = stages.EstimateCapacity(view, ht)
	case model.StageRisk:
		risk, err := stages.AssessRisk(view, ac.Diagnosis)
		if err != nil {
			return err
		}
		ac.Risk = risk
	case model.StageScenario:
		set, err := stages.BuildScenarios(view, ac.Diagnosis, ac.Capacity, p.scenarioCfg)
		if err != nil {
			return err
		}
		ac.Scenario = set
	case model.StageReadiness:
		report := CheckDataConsistency(ac)
		for _, w := range report.Warnings {
			log.Warn("pipeline: consistency warning",
				zap.String("field", w.Field),
				zap.String("stage", string(w.Stage)),
				zap.String("expected", w.Expected),
				zap.String("actual", w.Actual),
			)
		}
		result.Consistency = report

		r, err := p.engine.Score(ac, ht, in.TargetUnits)
		if err != nil {
			return err
		}
		ac.Readiness = r
	default:
		return eris.Errorf("pipeline: no runner for stage %q", stage)
	}
	return nil
}
