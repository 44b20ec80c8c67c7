// Package query orchestrates the question-answering pipeline: classify the
// query, dispatch to the relationship resolver or the similarity search, and
// synthesize the response. Reportable conditions (unknown reference,
// ambiguity, chain ending early) become explanatory answers; data-integrity
// faults propagate to the caller.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/OrgAtlasAI/orgatlas/engine/answer"
	"github.com/OrgAtlasAI/orgatlas/engine/classify"
	"github.com/OrgAtlasAI/orgatlas/engine/domain"
	"github.com/OrgAtlasAI/orgatlas/engine/resolve"
	"github.com/OrgAtlasAI/orgatlas/engine/store"
	"github.com/OrgAtlasAI/orgatlas/pkg/metrics"
)

// Directory abstracts the employee store reads the engine performs.
type Directory interface {
	Get(id string) (domain.Employee, error)
	All() []domain.Employee
	MatchName(fragment string) []domain.Employee
	FilterByType(t domain.EmploymentType) []domain.Employee
	FilterByCompany(name string) []domain.Employee
}

// Searcher abstracts similarity search; the in-memory store satisfies it, and
// a vector-database-backed index can be swapped in at the boundary.
type Searcher interface {
	Search(ctx context.Context, text string, k int) ([]store.Hit, error)
}

// Options configures the engine.
type Options struct {
	// TopK bounds free-text similarity search results.
	TopK int
	// MinScore drops free-text hits below this cosine similarity. Zero keeps all.
	MinScore float32
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{TopK: 5}
}

// Engine answers natural-language questions over the loaded employees.
type Engine struct {
	dir    Directory
	search Searcher
	opts   Options
	logger *slog.Logger

	queries  func(kind string) *metrics.Counter
	duration *metrics.Histogram
}

// New creates an Engine. reg may be nil to disable instrumentation.
func New(dir Directory, search Searcher, opts Options, logger *slog.Logger, reg *metrics.Registry) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK < 1 {
		opts.TopK = DefaultOptions().TopK
	}
	e := &Engine{dir: dir, search: search, opts: opts, logger: logger}
	if reg != nil {
		e.queries = func(kind string) *metrics.Counter {
			return reg.Counter(metrics.WithLabels("org_queries_total", "intent", kind),
				"Queries answered, by classified intent.")
		}
		e.duration = reg.Histogram("org_query_duration_seconds",
			"Time spent answering a query.", nil)
	}
	return e
}

// Response is the engine's external contract.
type Response struct {
	Answer            string                   `json:"answer"`
	RelevantEmployees []domain.EmployeeSummary `json:"relevant_employees"`
}

// Answer processes one query. It returns an error only for data-integrity
// faults (broken reference, cycle) or search transport failures; every other
// well-formed query yields a Response.
func (e *Engine) Answer(ctx context.Context, query string) (Response, error) {
	start := time.Now()
	it := classify.Classify(query)
	e.logger.Info("query classified", "intent", it.Kind.String(), "hops", it.Hops)

	resp, err := e.dispatch(ctx, it)
	if e.duration != nil {
		e.duration.Since(start)
	}
	if e.queries != nil {
		e.queries(it.Kind.String()).Inc()
	}
	if err != nil {
		e.logger.Error("query failed", "intent", it.Kind.String(), "err", err)
		return Response{}, err
	}
	return resp, nil
}

func (e *Engine) dispatch(ctx context.Context, it classify.Intent) (Response, error) {
	switch it.Kind {
	case classify.KindManagerOf:
		return e.managerOf(it)
	case classify.KindFilterByEmploymentType:
		return e.summarize(e.dir.FilterByType(it.EmploymentType),
			func(n int) string { return answer.FilterByType(it.EmploymentType, n) })
	case classify.KindFilterByCompany:
		return e.summarize(e.dir.FilterByCompany(it.Company),
			func(n int) string { return answer.FilterByCompany(it.Company, n) })
	case classify.KindUnmanaged:
		return e.summarize(resolve.Unmanaged(e.dir), answer.Unmanaged)
	case classify.KindFreeText:
		return e.freeText(ctx, it.Raw)
	default:
		return Response{}, fmt.Errorf("query: unhandled intent kind %d", it.Kind)
	}
}

func (e *Engine) managerOf(it classify.Intent) (Response, error) {
	emp, err := classify.ResolveRef(e.dir, it.Ref)
	if err != nil {
		var amb *domain.AmbiguousError
		switch {
		case errors.As(err, &amb):
			// List the candidates instead of guessing.
			summaries, serr := answer.Summaries(e.dir, amb.Candidates)
			if serr != nil {
				return Response{}, serr
			}
			return Response{Answer: answer.Ambiguous(amb), RelevantEmployees: summaries}, nil
		case errors.Is(err, domain.ErrNotFound):
			return Response{Answer: answer.NotFound(it.Ref), RelevantEmployees: []domain.EmployeeSummary{}}, nil
		}
		return Response{}, err
	}

	mgr, err := resolve.ManagerChain(e.dir, emp.ID, it.Hops)
	if err != nil {
		var nm *domain.NoManagerError
		if errors.As(err, &nm) {
			summaries, serr := answer.Summaries(e.dir, []domain.Employee{emp})
			if serr != nil {
				return Response{}, serr
			}
			return Response{Answer: answer.NoManager(emp, nm), RelevantEmployees: summaries}, nil
		}
		// BrokenRef / CycleDetected: the loaded data violates its invariants.
		return Response{}, err
	}

	summaries, err := answer.Summaries(e.dir, []domain.Employee{emp})
	if err != nil {
		return Response{}, err
	}
	return Response{Answer: answer.ManagerFound(emp, mgr, it.Hops), RelevantEmployees: summaries}, nil
}

func (e *Engine) summarize(employees []domain.Employee, render func(n int) string) (Response, error) {
	summaries, err := answer.Summaries(e.dir, employees)
	if err != nil {
		return Response{}, err
	}
	return Response{Answer: render(len(employees)), RelevantEmployees: summaries}, nil
}

func (e *Engine) freeText(ctx context.Context, raw string) (Response, error) {
	hits, err := e.search.Search(ctx, raw, e.opts.TopK)
	if err != nil {
		return Response{}, fmt.Errorf("query: similarity search: %w", err)
	}

	var employees []domain.Employee
	for _, h := range hits {
		if e.opts.MinScore > 0 && h.Score < e.opts.MinScore {
			continue
		}
		employees = append(employees, h.Employee)
	}

	summaries, err := answer.Summaries(e.dir, employees)
	if err != nil {
		return Response{}, err
	}
	return Response{Answer: answer.FreeText(summaries), RelevantEmployees: summaries}, nil
}
