package runner

import "context"

// FailureLogger logs failed request attempts.
type FailureLogger interface {
	LogFailure(err error)
}

// loggingRequester wraps a Requester with failure logging.
type loggingRequester struct {
	inner  Requester
	logger FailureLogger
}

// WithLogging wraps a Requester to log failures. Logging happens per attempt,
// so retried attempts are each reported.
func WithLogging(req Requester, logger FailureLogger) Requester {
	if logger == nil {
		return req
	}
	return &loggingRequester{
		inner:  req,
		logger: logger,
	}
}

func (l *loggingRequester) Do(ctx context.Context) error {
	err := l.inner.Do(ctx)
	if err != nil && l.logger != nil {
		l.logger.LogFailure(err)
	}
	return err
}

// Prepare forwards the per-operation hook to the wrapped requester.
func (l *loggingRequester) Prepare() {
	if p, ok := l.inner.(Preparer); ok {
		p.Prepare()
	}
}
