package api

import (
	"context"
	"sync"
)

// Transport executes request descriptors through the full hook pipeline.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// RequestHook inspects an outgoing descriptor and returns the one to send.
type RequestHook func(ctx context.Context, req *Request) (*Request, error)

// ResponseHook observes a settled call.
// OnSuccess runs while the call is successful, OnFailure while it is failed;
// OnFailure may recover by returning a response, typically by replaying through t.
type ResponseHook struct {
	OnSuccess func(ctx context.Context, resp *Response) (*Response, error)
	OnFailure func(ctx context.Context, t Transport, err error) (*Response, error)
}

// Pipeline holds the hooks applied by a Client to every call
type Pipeline struct {
	mu            sync.RWMutex
	requestHooks  []RequestHook
	responseHooks []ResponseHook
}

// NewPipeline creates an empty pipeline
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddRequestHook appends a request hook; hooks run in registration order
func (p *Pipeline) AddRequestHook(hook RequestHook) {
	if hook == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requestHooks = append(p.requestHooks, hook)
}

// AddResponseHook appends a response hook; hooks run in registration order
func (p *Pipeline) AddResponseHook(hook ResponseHook) {
	if hook.OnSuccess == nil && hook.OnFailure == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responseHooks = append(p.responseHooks, hook)
}

func (p *Pipeline) snapshot() ([]RequestHook, []ResponseHook) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]RequestHook(nil), p.requestHooks...), append([]ResponseHook(nil), p.responseHooks...)
}

// prepare runs request hooks; the first failure stops the chain
func (p *Pipeline) prepare(ctx context.Context, req *Request, hooks []RequestHook) (*Request, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	current := req.Clone()
	for _, hook := range hooks {
		next, err := hook(ctx, current)
		if err != nil {
			return nil, err
		}
		if next != nil {
			current = next
		}
	}
	return current, nil
}

// settle runs response hooks over the outcome of a call
func (p *Pipeline) settle(ctx context.Context, t Transport, hooks []ResponseHook, resp *Response, err error) (*Response, error) {
	for _, hook := range hooks {
		if err == nil {
			if hook.OnSuccess != nil {
				resp, err = hook.OnSuccess(ctx, resp)
			}
			continue
		}
		if hook.OnFailure != nil {
			resp, err = hook.OnFailure(ctx, t, err)
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
