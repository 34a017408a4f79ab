// Gói queue cung cấp một hàng đợi request với giới hạn số lượng chạy đồng thời.
// Task bắt đầu theo đúng thứ tự enqueue (FIFO dispatch), tối đa maxConcurrent
// task đang chạy cùng lúc. Task lỗi không bao giờ làm hỏng caller: kết quả
// fallback là nil để caller xử lý như danh sách rỗng.

package queue

import (
	"context"
	"sync"

	"github.com/thep200/gitshare/pkg/log"
)

const DefaultMaxConcurrent = 5

// Task là một thao tác bất đồng bộ trả về kết quả hoặc lỗi
type Task func(ctx context.Context) (interface{}, error)

type pending struct {
	task   Task
	result chan interface{}
}

type RequestQueue struct {
	Logger        log.Logger
	maxConcurrent int
	mu            sync.Mutex
	waiting       []*pending
	active        int
}

func NewRequestQueue(logger log.Logger, maxConcurrent int) (*RequestQueue, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &RequestQueue{
		Logger:        logger,
		maxConcurrent: maxConcurrent,
	}, nil
}

// Enqueue thêm task vào hàng đợi và trả về channel nhận kết quả.
// Channel luôn nhận đúng một giá trị: kết quả thật của task, hoặc nil
// nếu task lỗi hay panic.
func (q *RequestQueue) Enqueue(ctx context.Context, task Task) <-chan interface{} {
	p := &pending{
		task:   task,
		result: make(chan interface{}, 1),
	}

	q.mu.Lock()
	q.waiting = append(q.waiting, p)
	q.mu.Unlock()

	q.dispatch(ctx)
	return p.result
}

// dispatch đẩy các task đang chờ vào slot trống, giữ đúng thứ tự FIFO
func (q *RequestQueue) dispatch(ctx context.Context) {
	q.mu.Lock()
	for q.active < q.maxConcurrent && len(q.waiting) > 0 {
		p := q.waiting[0]
		q.waiting = q.waiting[1:]
		q.active++
		go q.run(ctx, p)
	}
	q.mu.Unlock()
}

func (q *RequestQueue) run(ctx context.Context, p *pending) {
	result := q.execute(ctx, p.task)
	p.result <- result

	q.mu.Lock()
	q.active--
	q.mu.Unlock()

	// Slot vừa trống, đẩy task kế tiếp vào ngay
	q.dispatch(ctx)
}

func (q *RequestQueue) execute(ctx context.Context, task Task) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			q.Logger.Error(ctx, "Queued task panicked, falling back to empty result: %v", r)
			result = nil
		}
	}()

	result, err := task(ctx)
	if err != nil {
		// Fallback: caller nhận kết quả rỗng thay vì lỗi
		q.Logger.Warn(ctx, "Queued task failed, falling back to empty result: %v", err)
		return nil
	}

	return result
}

// ActiveCount trả về số task đang chạy
func (q *RequestQueue) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// WaitingCount trả về số task đang chờ slot
func (q *RequestQueue) WaitingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
