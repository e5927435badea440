// Package adapters exposes synthesized objects over HTTP on echo, gin or
// fiber. Every adapter serves the same routes:
//
//	GET  {prefix}                      describe the contracts
//	POST {prefix}/{contract}/{method}  invoke a method, body {"args": [...]}
package adapters

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/toyz/facet/pkg/facet"
)

// Server is implemented by every adapter
type Server interface {
	Name() string
	Start(addr string) error
	Stop(ctx context.Context) error
}

// CallRequest is the body of an invocation request
type CallRequest struct {
	Args []json.RawMessage `json:"args"`
}

// CallResult is the body of a successful invocation
type CallResult struct {
	Result any `json:"result"`
}

// ErrorBody is the body of a failed request
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MethodInfo describes one method of a contract
type MethodInfo struct {
	Name      string   `json:"name"`
	Signature string   `json:"signature"`
	Markers   []string `json:"markers,omitempty"`
}

// ContractInfo describes one contract of the exposed object
type ContractInfo struct {
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	Methods []MethodInfo `json:"methods"`
}

type options struct {
	prefix string
	logger *slog.Logger
}

// Option configures an adapter
type Option func(*options)

// WithPrefix sets the route prefix, "/facet" by default
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{prefix: "/facet", logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Dispatcher turns HTTP calls into invocations on a synthesized object. It
// holds no framework state; adapters translate their context into Call and
// Describe.
type Dispatcher struct {
	obj       *facet.Object
	contracts map[string]*facet.Contract
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher over obj. Contracts are addressable by
// display name and by qualified type name.
func NewDispatcher(obj *facet.Object, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	d := &Dispatcher{
		obj:       obj,
		contracts: make(map[string]*facet.Contract),
		logger:    logger,
	}
	for _, c := range obj.Descriptor().Contracts() {
		d.contracts[c.Type().String()] = c
		if _, taken := d.contracts[c.Name()]; !taken {
			d.contracts[c.Name()] = c
		}
	}
	return d
}

// Describe lists the contracts of the object
func (d *Dispatcher) Describe() []ContractInfo {
	var infos []ContractInfo
	for _, c := range d.obj.Descriptor().Contracts() {
		info := ContractInfo{Name: c.Name(), Type: c.Type().String()}
		for _, m := range c.Methods() {
			info.Methods = append(info.Methods, MethodInfo{
				Name:      m.Name(),
				Signature: m.Signature().String(),
				Markers:   m.Markers(),
			})
		}
		infos = append(infos, info)
	}
	return infos
}

// Call invokes method of contract with JSON-encoded arguments and returns the
// status code and body to send
func (d *Dispatcher) Call(contract, method string, req CallRequest) (int, any) {
	c, ok := d.contracts[contract]
	if !ok {
		return http.StatusNotFound, ErrorBody{
			Error: "unknown contract " + contract,
			Code:  facet.CastErrorCode.String(),
		}
	}
	view, err := d.obj.CastTo(c.Type())
	if err != nil {
		return d.failure(err)
	}
	m, ok := c.Method(method)
	if !ok {
		return http.StatusNotFound, ErrorBody{
			Error: "contract " + contract + " declares no method " + method,
			Code:  facet.ResolutionErrorCode.String(),
		}
	}

	args, err := decodeArgs(m, req.Args)
	if err != nil {
		return d.failure(err)
	}

	out, err := view.Invoke(method, args...)
	if err != nil {
		return d.failure(err)
	}
	d.logger.Debug("facet: http call", "method", m.String())
	return http.StatusOK, CallResult{Result: out}
}

func (d *Dispatcher) failure(err error) (int, any) {
	status := StatusFor(err)
	d.logger.Warn("facet: http call failed", "status", status, "error", err)
	return status, ErrorBody{Error: err.Error(), Code: facet.CodeOf(err).String()}
}

// StatusFor maps a facet error onto an HTTP status code
func StatusFor(err error) int {
	switch facet.CodeOf(err) {
	case facet.ArgumentErrorCode:
		return http.StatusBadRequest
	case facet.CastErrorCode:
		return http.StatusNotFound
	case facet.ResolutionErrorCode:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decodeArgs decodes each raw argument into the declared parameter type
func decodeArgs(m facet.Method, raw []json.RawMessage) ([]any, error) {
	ft := m.Type()
	if len(raw) != ft.NumIn() {
		return nil, facet.Errorf(facet.ArgumentErrorCode, "facet: %s expects %d arguments, got %d", m, ft.NumIn(), len(raw))
	}
	args := make([]any, len(raw))
	for i, r := range raw {
		v := reflect.New(ft.In(i))
		if err := json.Unmarshal(r, v.Interface()); err != nil {
			return nil, facet.Errorf(facet.ArgumentErrorCode, "facet: %s argument %d", m, i).WithCause(err)
		}
		args[i] = v.Elem().Interface()
	}
	return args, nil
}

var (
	_ Server = (*EchoAdapter)(nil)
	_ Server = (*GinAdapter)(nil)
	_ Server = (*FiberAdapter)(nil)
)
