package ports

import "time"

type MetricsRecorder interface {
	ObserveAttempt(account string, outcome string, elapsed time.Duration)
	ObserveCommitted(account string, count int)
	ObserveSession(account string, outcome string)
}

type NopMetrics struct{}

func (NopMetrics) ObserveAttempt(string, string, time.Duration) {}

func (NopMetrics) ObserveCommitted(string, int) {}

func (NopMetrics) ObserveSession(string, string) {}
