package ports

// ServiceMetrics receives the service events worth counting.
type ServiceMetrics interface {
	// AccessDenied is called with "project", "task" or "admin".
	AccessDenied(resource string)
	// TaskCompleted is called with "update" or "progress".
	TaskCompleted(via string)
}
