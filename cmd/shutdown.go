package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// shutdownTask releases one resource. It should honor ctx.
type shutdownTask func(ctx context.Context) error

type namedTask struct {
	name string
	run  shutdownTask
}

// shutdownQueue runs cleanup tasks in reverse order of registration.
// Every resource is registered as soon as it is acquired, so an early
// return from Run releases exactly what was opened.
type shutdownQueue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
}

func newShutdownQueue() *shutdownQueue {
	return &shutdownQueue{tasks: make([]namedTask, 0, 8)}
}

// add registers a task. It is a no-op once the queue has been drained.
func (q *shutdownQueue) add(name string, task shutdownTask) {
	if task == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.tasks = append(q.tasks, namedTask{name: name, run: task})
}

// drain runs every task once, last registered first. Task errors and
// panics are collected; a cancelled ctx stops the drain early.
func (q *shutdownQueue) drain(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	var errs []error
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", err))
			return errors.Join(errs...)
		}

		task := tasks[i]
		log.WithField("task", task.name).Debug("Running shutdown task")

		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("panic in shutdown task %s: %v", task.name, r))
				}
			}()
			if err := task.run(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", task.name, err))
			}
		}()
	}

	return errors.Join(errs...)
}
