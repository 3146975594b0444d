// Package pipeline assembles one ParsedLedgerEntry per raw spreadsheet row:
// field extraction, grammar dispatch by the row's type discriminator, and
// per-row fault isolation so one malformed row never aborts a batch.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/colonial-ledger-parser/internal/domain/catalog"
	"github.com/colonial-ledger-parser/internal/domain/entry"
	"github.com/colonial-ledger-parser/internal/parser/grammar"
	"github.com/colonial-ledger-parser/internal/parser/resolver"
)

// Pipeline parses batches of raw rows over a bounded worker pool
type Pipeline struct {
	grammar *grammar.Parser
	res     *resolver.Resolver
	pool    *ants.Pool
	logger  *slog.Logger
}

// New creates a Pipeline with workers parse goroutines
func New(g *grammar.Parser, res *resolver.Resolver, workers int, logger *slog.Logger) (*Pipeline, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &Pipeline{
		grammar: g,
		res:     res,
		pool:    pool,
		logger:  logger,
	}, nil
}

// Shutdown releases the worker pool
func (p *Pipeline) Shutdown() {
	p.logger.Info("Shutting down parse worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// ParseBatch parses every row independently and returns one result per input
// row, in input order. Rows are fanned out over the worker pool; a row the
// pool cannot accept is parsed inline so the batch always completes.
func (p *Pipeline) ParseBatch(ctx context.Context, rows []entry.RawRow, ledgerName string) []*entry.ParsedLedgerEntry {
	results := make([]*entry.ParsedLedgerEntry, len(rows))
	var wg sync.WaitGroup

	for i := range rows {
		i := i
		row := rows[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			res := p.ParseRow(ctx, row, ledgerName)
			res.RowIndex = i
			results[i] = res
		}
		if err := p.pool.Submit(task); err != nil {
			p.logger.Warn("Worker pool rejected row, parsing inline",
				"row_index", i,
				"error", err,
			)
			task()
		}
	}

	wg.Wait()
	return results
}

// ParseRow parses a single row. Field extraction and the grammar step run in
// one pass; on any failure the row is marked failed with the offending entry
// id, and meta and account holder are recomputed outside the failing scope so
// a failed row still carries its provenance.
func (p *Pipeline) ParseRow(ctx context.Context, row entry.RawRow, ledgerName string) *entry.ParsedLedgerEntry {
	out := &entry.ParsedLedgerEntry{
		EntryText: row.EntryText,
		Status:    entry.Status{Succeeded: true},
	}

	if err := p.buildRow(ctx, out, row, ledgerName); err != nil {
		out.Transaction = entry.Transaction{}
		out.Meta = buildMeta(row, ledgerName)
		out.AccountHolder = p.buildHolder(ctx, row)
		out.Status = entry.Status{
			Succeeded:    false,
			ErrorMessage: fmt.Sprintf("entryID: %s, error: %v", row.EntryID, err),
		}
	}
	return out
}

func (p *Pipeline) buildRow(ctx context.Context, out *entry.ParsedLedgerEntry, row entry.RawRow, ledgerName string) error {
	out.People = p.buildEntityList(ctx, row.People, catalog.People)
	out.Places = p.buildEntityList(ctx, row.Places, catalog.Places)

	rowMoney, err := buildMoney(row)
	if err != nil {
		return err
	}
	out.Money = rowMoney

	date, err := buildDate(row.Day, row.Month, row.DateYear)
	if err != nil {
		return err
	}
	out.DateInfo = date

	out.Meta = buildMeta(row, ledgerName)
	out.FolioRefs, out.LedgerRefs = buildRefs(row.FolioReference, row.LedgerReference)
	out.AccountHolder = p.buildHolder(ctx, row)

	if row.EntryText == "" {
		return nil
	}

	switch grammar.ParseEntryType(row.EntryType) {
	case grammar.TypeTobacco:
		tobacco, err := p.grammar.ParseTobacco(ctx, row.EntryText, row.Colony, rowMoney.Sterling, rowMoney.Currency)
		if err != nil {
			return err
		}
		out.Transaction.Tobacco = tobacco
	case grammar.TypeItemized:
		itemized, err := p.grammar.ParseItemized(ctx, row.EntryText)
		if err != nil {
			return err
		}
		out.Transaction.Itemized = itemized
	default:
		regular, err := p.grammar.ParseRegular(ctx, row.EntryText)
		if err != nil {
			return err
		}
		out.Transaction.Regular = regular
	}
	return nil
}
