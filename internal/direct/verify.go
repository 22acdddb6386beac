package direct

import (
	"context"

	"github.com/ppiankov/factlens/internal/logger"
	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/worker"
)

// pendingClaim is a claim awaiting its verdict
type pendingClaim struct {
	text       string
	sourceType string
	imageURL   string
}

// verification is one finished claim check
type verification struct {
	record model.RawClaimResult
	err    error
}

func (v verification) GetError() error { return v.err }

// verifyAll checks claims concurrently and returns records in claim order.
// A failed check yields an error verdict instead of dropping the claim.
func (b *Backend) verifyAll(ctx context.Context, pending []pendingClaim) []model.RawClaimResult {
	results := worker.Run(ctx, b.workers, pending, func(ctx context.Context, p pendingClaim) verification {
		verdict, err := b.checker.CheckClaim(ctx, p.text)
		if err != nil {
			b.log.Warn("Claim check failed", logger.Error(err))
			verdict = b.failed(err)
		}
		return verification{record: p.record(verdict), err: err}
	})

	records := make([]model.RawClaimResult, 0, len(pending))
	for i, r := range results {
		if r.record.Claim == nil {
			// Never ran: the context was cancelled first
			r.record = pending[i].record(b.failed(ctx.Err()))
		}
		records = append(records, r.record)
	}
	return records
}

func (p pendingClaim) record(verdict *model.RawVerdict) model.RawClaimResult {
	text := p.text
	sourceType := p.sourceType
	rec := model.RawClaimResult{
		Claim:      &text,
		SourceType: &sourceType,
		Result:     verdict,
	}
	if p.imageURL != "" {
		imageURL := p.imageURL
		rec.ImageURL = &imageURL
	}
	return rec
}
