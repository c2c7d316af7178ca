package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/pkg/logging"
	"github.com/S1riyS/tfs/pkg/logging/slogext"
)

// Instance is one filesystem owned by the registry. All access goes through
// Do, which serializes calls.
type Instance struct {
	Token string

	mu  sync.Mutex
	svc FileSystemService

	// pool usage as of the last Do, readable without mu
	stats atomic.Pointer[models.Stats]
}

func newInstance(token string, svc FileSystemService) *Instance {
	inst := newInstance(token, svc)
	inst.publish()
	return inst
}

func (i *Instance) Do(fn func(svc FileSystemService) error) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	defer i.publish()
	return fn(i.svc)
}

// Stats returns the usage snapshot taken when the last Do finished. It never
// waits for a call in progress.
func (i *Instance) Stats() models.Stats {
	return *i.stats.Load()
}

func (i *Instance) publish() {
	stats := i.svc.Stats()
	i.stats.Store(&stats)
}

// Registry maps tokens to independent filesystem instances.
type Registry struct {
	params models.Params

	mu        sync.RWMutex
	instances map[string]*Instance
}

func NewRegistry(params models.Params) *Registry {
	return &Registry{
		params:    params,
		instances: make(map[string]*Instance),
	}
}

// Create builds a new instance. An empty token gets a random one.
func (r *Registry) Create(ctx context.Context, token string) (*Instance, error) {
	const op = "service.Registry.Create"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	if token == "" {
		token = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[token]; ok {
		logger.Debug("Filesystem already exists", slog.String("token", token))
		return nil, ErrExists
	}

	svc, err := New(r.params)
	if err != nil {
		logger.Error("Failed to create filesystem", slog.String("token", token), slogext.Err(err))
		return nil, err
	}

	inst := newInstance(token, svc)
	r.instances[token] = inst

	logger.Debug("Filesystem created", slog.String("token", token))
	return inst, nil
}

func (r *Registry) Get(token string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[token]
	if !ok {
		return nil, ErrUnknownFS
	}
	return inst, nil
}

func (r *Registry) Destroy(ctx context.Context, token string) error {
	r.mu.Lock()
	inst, ok := r.instances[token]
	delete(r.instances, token)
	r.mu.Unlock()

	if !ok {
		return ErrUnknownFS
	}

	return inst.Do(func(svc FileSystemService) error {
		return svc.Destroy(ctx)
	})
}

// CloseAll destroys every instance and reports all failures together.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	instances := r.instances
	r.instances = make(map[string]*Instance)
	r.mu.Unlock()

	var result error
	for _, inst := range instances {
		err := inst.Do(func(svc FileSystemService) error {
			return svc.Destroy(ctx)
		})
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Stats sums the last published usage of every instance. Metrics scrapes
// call it, so it does not take instance locks.
func (r *Registry) Stats() models.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total models.Stats
	for _, inst := range r.instances {
		total = total.Add(inst.Stats())
	}
	return total
}
