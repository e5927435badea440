// Package fxfacet provides synthesized objects to go.uber.org/fx
// applications.
package fxfacet

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/toyz/facet/pkg/facet"
	"github.com/toyz/facet/pkg/facet/adapters"
)

// Configure fills in a builder
type Configure func(b *facet.Builder) *facet.Builder

type loggerParams struct {
	fx.In
	Logger *slog.Logger `optional:"true"`
}

type depParams[D any] struct {
	fx.In
	Dep    D
	Logger *slog.Logger `optional:"true"`
}

// Provide supplies a T synthesized by configure. T's contract must carry an
// adapter (see facet.Adapter).
func Provide[T any](configure Configure) fx.Option {
	return fx.Provide(func(p loggerParams) (T, error) {
		return synthesize[T](configure, p.Logger)
	})
}

// ProvideWith is like Provide but hands configure a dependency resolved
// from the graph, typically the fallback object
func ProvideWith[T, D any](configure func(dep D, b *facet.Builder) *facet.Builder) fx.Option {
	return fx.Provide(func(p depParams[D]) (T, error) {
		return synthesize[T](func(b *facet.Builder) *facet.Builder {
			return configure(p.Dep, b)
		}, p.Logger)
	})
}

// ProvideObject supplies the synthesized *facet.Object itself under name
func ProvideObject(name string, configure Configure) fx.Option {
	return fx.Provide(fx.Annotated{
		Name: name,
		Target: func(p loggerParams) (*facet.Object, error) {
			return build(configure, p.Logger)
		},
	})
}

// Serve exposes the object provided under name over HTTP for the lifetime of
// the application
func Serve(name, addr string, newServer func(obj *facet.Object) adapters.Server) fx.Option {
	return fx.Invoke(fx.Annotate(
		func(lc fx.Lifecycle, obj *facet.Object, logger *slog.Logger) {
			if logger == nil {
				logger = slog.New(slog.DiscardHandler)
			}
			server := newServer(obj)
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					logger.Info("facet: serving", "server", server.Name(), "addr", addr, "object", obj.ID())
					go func() {
						if err := server.Start(addr); err != nil {
							logger.Error("facet: server stopped", "server", server.Name(), "error", err)
						}
					}()
					return nil
				},
				OnStop: func(ctx context.Context) error {
					return server.Stop(ctx)
				},
			})
		},
		fx.ParamTags(``, `name:"`+name+`"`, `optional:"true"`),
	))
}

// Logger supplies l to the graph and routes fx's own events through it
func Logger(l *slog.Logger) fx.Option {
	return fx.Options(
		fx.Supply(l),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: l}
		}),
	)
}

func build(configure Configure, logger *slog.Logger) (*facet.Object, error) {
	b := facet.NewBuilder()
	if logger != nil {
		b.SetLogger(logger)
	}
	if configure != nil {
		b = configure(b)
	}
	return b.Build()
}

func synthesize[T any](configure Configure, logger *slog.Logger) (T, error) {
	obj, err := build(configure, logger)
	if err != nil {
		var zero T
		return zero, err
	}
	return facet.As[T](obj)
}
