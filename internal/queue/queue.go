package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "travelplanner:booking_tasks"

// maxAttempts mirrors the task runtime contract: the whole orchestrator run is
// retried at most once on an uncaught failure.
const maxAttempts = 2

// Task is one trip-booking unit of work.
type Task struct {
	TripID  uuid.UUID `json:"trip_id"`
	Attempt int       `json:"attempt"`
}

func EncodeTask(t Task) ([]byte, error) {
	return json.Marshal(t)
}

func DecodeTask(data []byte) (Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	if t.TripID == uuid.Nil {
		return Task{}, errors.New("decode task: missing trip_id")
	}
	return t, nil
}

// ShouldRetry reports whether a failed task gets re-enqueued.
func ShouldRetry(t Task) bool {
	return t.Attempt+1 < maxAttempts
}

// Queue is a Redis list carrying trip-booking tasks.
type Queue struct {
	rdb *redis.Client
	key string
}

func New(rdb *redis.Client, key string) *Queue {
	if key == "" {
		key = DefaultKey
	}
	return &Queue{rdb: rdb, key: key}
}

// EnqueueTripBookings schedules the orchestrator for one trip.
func (q *Queue) EnqueueTripBookings(ctx context.Context, tripID uuid.UUID) error {
	return q.push(ctx, Task{TripID: tripID})
}

func (q *Queue) push(ctx context.Context, t Task) error {
	data, err := EncodeTask(t)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, data).Err()
}

// Worker pops one task at a time and hands it to the orchestrator. With a
// single worker per queue key this makes per-trip execution single-threaded
// end to end.
type Worker struct {
	queue        *Queue
	handler      func(ctx context.Context, tripID uuid.UUID) error
	retryBackoff time.Duration
}

func NewWorker(q *Queue, handler func(ctx context.Context, tripID uuid.UUID) error, retryBackoff time.Duration) *Worker {
	return &Worker{queue: q, handler: handler, retryBackoff: retryBackoff}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("worker started queue=%s", w.queue.key)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := w.queue.rdb.BRPop(ctx, 5*time.Second, w.queue.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("worker brpop error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(res) != 2 {
			continue
		}

		task, err := DecodeTask([]byte(res[1]))
		if err != nil {
			log.Printf("worker dropping malformed task: %v", err)
			continue
		}

		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task Task) {
	start := time.Now()
	err := w.handler(ctx, task.TripID)
	if err == nil {
		log.Printf("trip bookings processed trip_id=%s attempt=%d latency=%s", task.TripID, task.Attempt, time.Since(start))
		return
	}

	if !ShouldRetry(task) {
		log.Printf("trip bookings failed permanently trip_id=%s attempt=%d err=%v", task.TripID, task.Attempt, err)
		return
	}

	log.Printf("trip bookings failed, retrying after %s trip_id=%s attempt=%d err=%v", w.retryBackoff, task.TripID, task.Attempt, err)
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.retryBackoff):
	}
	if perr := w.queue.push(ctx, Task{TripID: task.TripID, Attempt: task.Attempt + 1}); perr != nil {
		log.Printf("trip bookings re-enqueue failed trip_id=%s err=%v", task.TripID, perr)
	}
}
