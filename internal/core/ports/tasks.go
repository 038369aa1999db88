package ports

import "context"

// Task is one unit of background work. Tasks sharing a Key run in
// submission order.
type Task struct {
	Key string
	Run func(ctx context.Context) error
}

// TaskRunner executes a batch of tasks and reports one error per task, in
// task order.
type TaskRunner interface {
	Run(ctx context.Context, tasks []Task) []error
}
