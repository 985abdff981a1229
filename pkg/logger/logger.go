// Package logger provides a zap-based application logger.
package logger

import "go.uber.org/zap"

// New returns a production logger named after the service. Components that
// log take a *zap.Logger directly so tests can hand them zap.NewNop().
func New(service string) (*zap.Logger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
