package service

import "github.com/taskpilot/taskpilot/internal/core/ports"

type nopMetrics struct{}

func (nopMetrics) AccessDenied(string)  {}
func (nopMetrics) TaskCompleted(string) {}

func metricsOrNop(m ports.ServiceMetrics) ports.ServiceMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
