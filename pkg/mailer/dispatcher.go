package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prism-worklet/prism-api/pkg/logger"
	"go.uber.org/zap"
)

// Dispatcher delivers mail from a bounded queue on a background worker.
// Enqueue never blocks the request path: when the queue is full the job
// is dropped and logged. Delivery failures are logged and counted, never
// surfaced to the enqueuer.
type Dispatcher struct {
	mailer Mailer
	jobs   chan job
	done   chan struct{}
}

var errQueueFull = errors.New("mailer: queue full")

type job struct {
	id       string
	template string
	email    string
	name     string
	code     string
}

// NewDispatcher creates a Dispatcher with the given queue capacity and
// starts its worker.
func NewDispatcher(m Mailer, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}

	d := &Dispatcher{
		mailer: m,
		jobs:   make(chan job, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()

	return d
}

// EnqueueVerification queues a signup OTP mail.
func (d *Dispatcher) EnqueueVerification(email, name, code string) {
	d.enqueue(job{
		id:       uuid.NewString(),
		template: TemplateVerification,
		email:    email,
		name:     name,
		code:     code,
	})
}

// EnqueuePasswordReset queues a password reset OTP mail.
func (d *Dispatcher) EnqueuePasswordReset(email, name, code string) {
	d.enqueue(job{
		id:       uuid.NewString(),
		template: TemplatePasswordReset,
		email:    email,
		name:     name,
		code:     code,
	})
}

func (d *Dispatcher) enqueue(j job) {
	select {
	case d.jobs <- j:
	default:
		logger.Warn("Email queue full, dropping job",
			zap.String("job_id", j.id),
			zap.String("template", j.template))
		observeDispatch(j.template, errQueueFull)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for j := range d.jobs {
		start := time.Now()

		var err error
		switch j.template {
		case TemplatePasswordReset:
			err = d.mailer.SendPasswordResetCode(j.email, j.name, j.code)
		default:
			err = d.mailer.SendVerificationCode(j.email, j.name, j.code)
		}

		observeDispatch(j.template, err)

		if err != nil {
			logger.Error("Email delivery failed",
				zap.String("job_id", j.id),
				zap.String("template", j.template),
				zap.Error(err))
			continue
		}

		logger.Info("Email delivered",
			zap.String("job_id", j.id),
			zap.String("template", j.template),
			zap.Duration("duration", time.Since(start)))
	}
}

// Shutdown stops accepting jobs and waits for the worker to drain the
// queue or the context to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.jobs)

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
