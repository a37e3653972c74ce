package workflow

import (
	"context"
	"errors"

	"github.com/akolanti/docqa-client/internal/adapter"
	"github.com/akolanti/docqa-client/internal/adapter/utils"
	"github.com/akolanti/docqa-client/internal/backend"
	"github.com/akolanti/docqa-client/internal/data/store"
	"github.com/akolanti/docqa-client/internal/domain/sessionModel"
	"github.com/akolanti/docqa-client/pkg/logger_i"
)

type QueryReport struct {
	Accepted bool
	Sources  int
	Failure  error
	Message  string
}

func (r QueryReport) Failed() bool {
	return r.Failure != nil
}

type QuerySession struct {
	client backend.Client
	logger *logger_i.Logger
}

func NewQuerySession(client backend.Client) *QuerySession {
	return &QuerySession{
		client: client,
		logger: logger_i.NewLogger("QuerySession"),
	}
}

// Submit asks one question. A blank question changes nothing and is reported as
// not accepted. Any failure is recorded twice: as the last error and as a bot
// turn with the same text.
func (q *QuerySession) Submit(ctx context.Context, question string, state sessionModel.Mutator) QueryReport {
	log := q.logger.With("traceId", utils.TraceIdFrom(ctx))

	if _, err := state.AppendUserTurn(question); err != nil {
		if !errors.Is(err, store.ErrInvalidInput) {
			log.Error("could not record question", "error", err)
		}
		return QueryReport{}
	}
	state.ClearError()
	state.ClearPendingInput()

	report := QueryReport{Accepted: true}
	resp, err := q.client.Query(ctx, question)
	if err != nil {
		report.Failure = err
		report.Message = adapter.ToFailureMessage(adapter.OperationQuery, err)
		state.SetError(report.Message)
		state.AppendBotTurn(report.Message, nil)
		log.Warn("query failed", "error", err)
		return report
	}

	state.AppendBotTurn(resp.Answer, resp.Sources)
	report.Sources = len(resp.Sources)
	log.Debug("query answered", "sources", report.Sources)
	return report
}
