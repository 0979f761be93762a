package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"go.uber.org/zap"
)

// DefaultOpinionTimeout bounds a single secondary-opinion call.
const DefaultOpinionTimeout = 8 * time.Second

// Secondary-opinion outcomes reported to the Observer.
const (
	OpinionOutcomeAgree     = "agree"
	OpinionOutcomeDisagree  = "disagree"
	OpinionOutcomeNoOpinion = "no_opinion"
	OpinionOutcomeError     = "error"
	OpinionOutcomeTimeout   = "timeout"
)

var ErrOpinionPanic = errors.New("secondary opinion client panicked")

// OpinionGuard wraps an OpinionClient so that it can never fail, hang or
// panic past the resolver. Every failure becomes NoOpinion.
type OpinionGuard struct {
	client   domain.OpinionClient
	timeout  time.Duration
	observer Observer
	logger   *zap.Logger
}

func NewOpinionGuard(client domain.OpinionClient, timeout time.Duration, logger *zap.Logger) *OpinionGuard {
	if timeout <= 0 {
		timeout = DefaultOpinionTimeout
	}
	return &OpinionGuard{
		client:   client,
		timeout:  timeout,
		observer: nopObserver{},
		logger:   logger,
	}
}

func (g *OpinionGuard) SetObserver(o Observer) {
	g.observer = o
}

type opinionReply struct {
	opinion *domain.SecondaryOpinion
	err     error
}

func (g *OpinionGuard) Ask(ctx context.Context, req domain.OpinionRequest) domain.SecondaryOpinion {
	if g == nil || g.client == nil {
		return domain.NoOpinion()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// Buffered so the call goroutine can always finish after a timeout.
	replies := make(chan opinionReply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				replies <- opinionReply{err: fmt.Errorf("%w: %v", ErrOpinionPanic, r)}
			}
		}()
		op, err := g.client.SecondOpinion(ctx, req)
		replies <- opinionReply{opinion: op, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Warn("secondary opinion timed out",
			zap.String("diagnosis", req.Diagnosis),
			zap.Duration("timeout", g.timeout),
		)
		g.observer.ObserveOpinion(OpinionOutcomeTimeout)
		return domain.NoOpinion()
	case reply := <-replies:
		if ctx.Err() != nil {
			g.logger.Warn("secondary opinion arrived after deadline", zap.String("diagnosis", req.Diagnosis))
			g.observer.ObserveOpinion(OpinionOutcomeTimeout)
			return domain.NoOpinion()
		}
		if reply.err != nil {
			g.logger.Warn("secondary opinion failed",
				zap.String("diagnosis", req.Diagnosis),
				zap.Error(reply.err),
			)
			g.observer.ObserveOpinion(OpinionOutcomeError)
			return domain.NoOpinion()
		}
		op := sanitizeOpinion(reply.opinion)
		g.observer.ObserveOpinion(opinionOutcome(op))
		return op
	}
}

func sanitizeOpinion(op *domain.SecondaryOpinion) domain.SecondaryOpinion {
	if op == nil {
		return domain.NoOpinion()
	}
	out := *op
	if !domain.ValidOpinionConfidence(string(out.Confidence)) {
		out.Confidence = domain.OpinionUnknown
	}
	return out
}

func opinionOutcome(op domain.SecondaryOpinion) string {
	switch {
	case op.Match == nil:
		return OpinionOutcomeNoOpinion
	case *op.Match:
		return OpinionOutcomeAgree
	default:
		return OpinionOutcomeDisagree
	}
}
