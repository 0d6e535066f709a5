package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
	"github.com/cp25sy5-modjot/doc-extract-service/internal/ports"
)

// ErrQueueFull is returned by Submit when the task queue has no room.
var ErrQueueFull = errors.New("task queue full")

// ErrUnknownTask is returned by Get for ids that were never submitted.
var ErrUnknownTask = errors.New("unknown task")

// ErrDuplicateTask is returned by Submit when the caller-supplied id is
// already registered.
var ErrDuplicateTask = errors.New("duplicate task id")

// taskCallback is the outcome document POSTed to the task's callback URL.
type taskCallback struct {
	TaskID string            `json:"task_id"`
	Status domain.TaskStatus `json:"status"`
	Result json.RawMessage   `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// Runner accepts tasks, executes them through the processor one at a time
// and reports outcomes back to the submitting engine. Execution is
// single-flight: the extraction model is not assumed reentrant-safe.
type Runner struct {
	proc  ports.ProcessorPort
	queue chan uuid.UUID
	httpc *http.Client
	log   zerolog.Logger

	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task

	done chan struct{}
}

func NewRunner(proc ports.ProcessorPort, queueSize int, log zerolog.Logger) *Runner {
	return &Runner{
		proc:  proc,
		queue: make(chan uuid.UUID, queueSize),
		httpc: &http.Client{Timeout: 30 * time.Second},
		tasks: make(map[uuid.UUID]*domain.Task),
		log:   log.With().Str("component", "tasks").Logger(),
		done:  make(chan struct{}),
	}
}

// Start launches the worker goroutine. It exits when ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-r.queue:
				r.run(ctx, id)
			}
		}
	}()
}

// Done is closed once the worker goroutine has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Submit registers a task and queues it for execution.
func (r *Runner) Submit(task *domain.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.Status = domain.TaskPending
	task.SubmittedAt = time.Now()

	r.mu.Lock()
	if _, exists := r.tasks[task.ID]; exists {
		r.mu.Unlock()
		return ErrDuplicateTask
	}
	r.tasks[task.ID] = task
	r.mu.Unlock()

	select {
	case r.queue <- task.ID:
		return nil
	default:
		r.mu.Lock()
		delete(r.tasks, task.ID)
		r.mu.Unlock()
		return ErrQueueFull
	}
}

// Get returns a snapshot of the task's current state.
func (r *Runner) Get(id uuid.UUID) (domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return domain.Task{}, ErrUnknownTask
	}
	return *t, nil
}

func (r *Runner) run(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	t, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	t.Status = domain.TaskProcessing
	data := t.Data
	r.mu.Unlock()

	result, err := r.proc.Process(ctx, data)

	r.mu.Lock()
	t.FinishedAt = time.Now()
	if err != nil {
		t.Status = domain.TaskFailed
		t.Error = err.Error()
	} else {
		t.Status = domain.TaskFinished
		t.Result = result
	}
	cb := taskCallback{
		TaskID: t.ID.String(),
		Status: t.Status,
		Error:  t.Error,
	}
	if out, ok := t.Result[FieldResult]; ok {
		cb.Result = json.RawMessage(out.Data)
	}
	callbackURL := t.CallbackURL
	r.mu.Unlock()

	if err != nil {
		r.log.Warn().Str("task", id.String()).Err(err).Msg("task failed")
	} else {
		r.log.Info().Str("task", id.String()).Msg("task finished")
	}

	if callbackURL != "" {
		r.deliver(ctx, callbackURL, cb)
	}
}

func (r *Runner) deliver(ctx context.Context, url string, cb taskCallback) {
	payload, err := json.Marshal(cb)
	if err != nil {
		r.log.Error().Str("task", cb.TaskID).Err(err).Msg("marshal callback")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		r.log.Warn().Str("task", cb.TaskID).Err(err).Msg("build callback request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.httpc.Do(req)
	if err != nil {
		r.log.Warn().Str("task", cb.TaskID).Str("url", url).Err(err).Msg("callback delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		r.log.Warn().Str("task", cb.TaskID).Str("url", url).Msg(fmt.Sprintf("callback rejected with status %d", resp.StatusCode))
	}
}
