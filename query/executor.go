package query

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dberrors "github.com/vegasq/flatdb/internal/errors"
	"github.com/vegasq/flatdb/internal/metrics"
	"github.com/vegasq/flatdb/reader"
)

// Store is the storage the engine reads and appends through.
type Store interface {
	OpenTable(name string) (*reader.Reader, error)
	AppendRow(name string, row []string) error
}

// SelectRequest describes one read. Columns and Aggregate are exclusive.
// A nil MemoryBudget uses the engine default.
type SelectRequest struct {
	Table        string
	Columns      []string
	Aggregate    *AggregateSpec
	Distinct     bool
	Where        string
	MemoryBudget *int64
}

// InsertRequest appends one row
type InsertRequest struct {
	Table  string
	Values []string
}

// Result holds either a ResultSet or an aggregate
type Result struct {
	QueryID     string
	ResultSet   *ResultSet
	Aggregate   *AggregateResult
	RowsScanned int64
}

// Engine executes requests against a Store. It is not safe for
// concurrent use.
type Engine struct {
	store         Store
	logger        *slog.Logger
	defaultBudget int64
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDefaultBudget sets the budget used when a request has none
func WithDefaultBudget(budget int64) EngineOption {
	return func(e *Engine) {
		e.defaultBudget = budget
	}
}

// NewEngine creates a new engine
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         store,
		logger:        slog.Default(),
		defaultBudget: DefaultMemoryBudget,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Insert appends one row to a table
func (e *Engine) Insert(req InsertRequest) error {
	err := e.store.AppendRow(req.Table, req.Values)
	metrics.QueriesTotal.WithLabelValues("insert", metrics.Status(err)).Inc()
	if err != nil {
		return err
	}
	e.logger.Debug("row inserted", "table", req.Table, "fields", len(req.Values))
	return nil
}

// Select runs a projection or aggregate query
func (e *Engine) Select(req SelectRequest) (*Result, error) {
	kind := "select"
	if req.Aggregate != nil {
		kind = "aggregate"
	}

	start := time.Now()
	res, err := e.execute(req)
	metrics.QueriesTotal.WithLabelValues(kind, metrics.Status(err)).Inc()
	if err != nil {
		return nil, err
	}

	metrics.RowsScanned.Add(float64(res.RowsScanned))
	attrs := []any{
		"query_id", res.QueryID,
		"table", req.Table,
		"kind", kind,
		"rows_scanned", res.RowsScanned,
		"elapsed", time.Since(start),
	}
	if res.ResultSet != nil {
		attrs = append(attrs, "rows", len(res.ResultSet.Rows), "memory_usage", res.ResultSet.MemoryUsage)
		if res.ResultSet.Truncated {
			metrics.BudgetTruncations.Inc()
			e.logger.Info("result truncated by memory budget", "query_id", res.QueryID, "budget", res.ResultSet.Budget)
		}
	}
	e.logger.Debug("query executed", attrs...)

	return res, nil
}

func (e *Engine) execute(req SelectRequest) (*Result, error) {
	if req.Aggregate != nil && len(req.Columns) > 0 {
		return nil, fmt.Errorf("%w: aggregate cannot be combined with columns", dberrors.ErrInvalidAggregate)
	}

	r, err := e.store.OpenTable(req.Table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	header := r.Header()

	var predicate Expression
	if req.Where != "" {
		predicate, err = ParseAndBind(req.Where, header)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{QueryID: uuid.NewString()}

	var (
		agg      *Aggregator
		aggIndex int
		mat      *Materializer
	)
	if req.Aggregate != nil {
		pos, ok := header.Index(req.Aggregate.Column)
		if !ok {
			return nil, fmt.Errorf("%w: %s", dberrors.ErrColumnNotFound, req.Aggregate.Column)
		}
		agg = NewAggregator(*req.Aggregate)
		aggIndex = pos
	} else {
		budget := e.defaultBudget
		if req.MemoryBudget != nil {
			budget = *req.MemoryBudget
		}
		mat, err = NewMaterializer(header, req.Columns, req.Distinct, budget)
		if err != nil {
			return nil, err
		}
	}

scan:
	for {
		rows, err := r.NextChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to scan %s: %w", req.Table, err)
		}

		for _, row := range rows {
			res.RowsScanned++

			if predicate != nil {
				ok, err := predicate.Evaluate(row)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
			}

			if agg != nil {
				agg.Add(row[aggIndex])
				continue
			}
			if !mat.Add(row) {
				break scan
			}
		}
	}

	if agg != nil {
		out := agg.Result()
		res.Aggregate = &out
	} else {
		res.ResultSet = mat.Result()
	}
	return res, nil
}
