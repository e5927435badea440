package fxfacet

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/toyz/facet/pkg/facet"
	"github.com/toyz/facet/pkg/facet/adapters"
)

type Greeter interface {
	Greet(name string) string
}

type greeterView struct{ v *facet.View }

func (g greeterView) Greet(name string) string {
	out, err := g.v.Invoke("Greet", name)
	if err != nil {
		panic(err)
	}
	return out.(string)
}

var greeterContract = facet.ContractOf[Greeter](facet.Adapter(func(v *facet.View) Greeter { return greeterView{v} }))

type english struct{ greeting string }

func (e *english) Greet(name string) string { return e.greeting + ", " + name }

func TestProvide(t *testing.T) {
	var g Greeter
	app := fx.New(
		fx.NopLogger,
		Provide[Greeter](func(b *facet.Builder) *facet.Builder {
			return b.AddContract(greeterContract).HandleMethod("Greet", func(inv *facet.Invocation) (any, error) {
				return "hey " + inv.Arg(0).(string), nil
			})
		}),
		fx.Populate(&g),
	)
	require.NoError(t, app.Err())
	assert.Equal(t, "hey Ada", g.Greet("Ada"))
}

func TestProvideWith_InjectsFallback(t *testing.T) {
	var g Greeter
	app := fx.New(
		fx.NopLogger,
		fx.Supply(&english{greeting: "Hello"}),
		ProvideWith[Greeter](func(fb *english, b *facet.Builder) *facet.Builder {
			return b.AddContract(greeterContract).SetFallback(fb)
		}),
		fx.Populate(&g),
	)
	require.NoError(t, app.Err())
	assert.Equal(t, "Hello, Ada", g.Greet("Ada"))
}

func TestProvide_ConfigurationErrorFailsTheGraph(t *testing.T) {
	var g Greeter
	app := fx.New(
		fx.NopLogger,
		Provide[Greeter](func(b *facet.Builder) *facet.Builder {
			return b.AddContract(greeterContract).HandleMethod("String", facet.Returning("nope"))
		}),
		fx.Populate(&g),
	)
	require.Error(t, app.Err())
	assert.Contains(t, app.Err().Error(), "would shadow reserved")
}

type fakeServer struct {
	started chan string
	stopped bool
	done    chan struct{}
}

func (f *fakeServer) Name() string { return "fake" }

func (f *fakeServer) Start(addr string) error {
	f.started <- addr
	<-f.done
	return nil
}

func (f *fakeServer) Stop(context.Context) error {
	f.stopped = true
	close(f.done)
	return nil
}

func TestProvideObjectAndServe(t *testing.T) {
	server := &fakeServer{started: make(chan string, 1), done: make(chan struct{})}
	var served *facet.Object

	app := fxtest.New(t,
		ProvideObject("greeter", func(b *facet.Builder) *facet.Builder {
			return b.AddContract(greeterContract).SetFallback(&english{greeting: "Hi"})
		}),
		Serve("greeter", ":0", func(obj *facet.Object) adapters.Server {
			served = obj
			return server
		}),
	)
	app.RequireStart()
	assert.Equal(t, ":0", <-server.started)

	out, err := served.Invoke("Greet", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Hi, Ada", out)

	app.RequireStop()
	assert.True(t, server.stopped)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var g Greeter
	app := fx.New(
		Logger(logger),
		Provide[Greeter](func(b *facet.Builder) *facet.Builder {
			return b.AddContract(greeterContract).SetFallback(&english{greeting: "Yo"})
		}),
		fx.Populate(&g),
	)
	require.NoError(t, app.Err())
	assert.Equal(t, "Yo, Ada", g.Greet("Ada"))
	assert.Contains(t, buf.String(), "provided")
	assert.Contains(t, buf.String(), "facet: descriptor finalized")
}
