package domain

import "fmt"

// ResourceKind names an owned entity type.
type ResourceKind string

const (
	ResourceProject ResourceKind = "project"
	ResourceTask    ResourceKind = "task"
)

// ResourceRef points at one owned entity. Ownership of a task is the
// ownership of its project.
type ResourceRef struct {
	Kind ResourceKind
	ID   int64
}

func ProjectRef(id int64) ResourceRef { return ResourceRef{Kind: ResourceProject, ID: id} }

func TaskRef(id int64) ResourceRef { return ResourceRef{Kind: ResourceTask, ID: id} }

// NotFound returns the not-found error that matches the resource kind.
func (r ResourceRef) NotFound() error {
	switch r.Kind {
	case ResourceProject:
		return ErrProjectNotFound
	case ResourceTask:
		return ErrTaskNotFound
	default:
		return fmt.Errorf("unknown resource kind %q", r.Kind)
	}
}

func (r ResourceRef) String() string {
	return fmt.Sprintf("%s/%d", r.Kind, r.ID)
}
