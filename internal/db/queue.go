package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrQueueClosed = errors.New("db queue closed")

type DBTask struct {
	Ctx  context.Context
	Exec func(*sql.DB) (interface{}, error)
	Resp chan DBResult
}

type DBResult struct {
	Data interface{}
	Err  error
}

// DBQueue serializes all database access through a single worker so that
// SQLite never sees concurrent writers.
type DBQueue struct {
	tasks      chan DBTask
	done       chan struct{}
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
	linear     bool
}

func NewDBQueue(db *sql.DB) *DBQueue {
	return newQueue(db, 100*time.Millisecond, true)
}

func NewDBQueueForTest(db *sql.DB) *DBQueue {
	return newQueue(db, time.Millisecond, false)
}

func newQueue(db *sql.DB, retryDelay time.Duration, linear bool) *DBQueue {
	q := &DBQueue{
		tasks:      make(chan DBTask, 100),
		done:       make(chan struct{}),
		db:         db,
		maxRetry:   3,
		retryDelay: retryDelay,
		linear:     linear,
	}
	go q.worker()
	return q
}

func (q *DBQueue) Execute(task func(*sql.DB) (interface{}, error)) (interface{}, error) {
	return q.ExecuteContext(context.Background(), task)
}

func (q *DBQueue) ExecuteContext(ctx context.Context, task func(*sql.DB) (interface{}, error)) (interface{}, error) {
	select {
	case <-q.done:
		return nil, ErrQueueClosed
	default:
	}

	resp := make(chan DBResult, 1)
	select {
	case q.tasks <- DBTask{Ctx: ctx, Exec: task, Resp: resp}:
	case <-q.done:
		return nil, ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case result := <-resp:
		return result.Data, result.Err
	case <-q.done:
		return nil, ErrQueueClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *DBQueue) worker() {
	for {
		select {
		case task := <-q.tasks:
			task.Resp <- q.executeWithRetry(task)
		case <-q.done:
			return
		}
	}
}

func (q *DBQueue) executeWithRetry(task DBTask) DBResult {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		if err := task.Ctx.Err(); err != nil {
			return DBResult{Err: err}
		}
		data, err := task.Exec(q.db)
		if err == nil {
			return DBResult{Data: data}
		}
		// sql.ErrNoRows is an answer, not a failure.
		if errors.Is(err, sql.ErrNoRows) {
			return DBResult{Err: err}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			delay := q.retryDelay
			if q.linear {
				delay = time.Duration(attempt+1) * q.retryDelay
			}
			time.Sleep(delay)
		}
	}
	return DBResult{Err: lastErr}
}

func (q *DBQueue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}

func (q *DBQueue) DB() *sql.DB {
	return q.db
}
