package adapters

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/facet/pkg/facet"
)

// EchoAdapter serves a synthesized object with Echo v4
type EchoAdapter struct {
	engine     *echo.Echo
	dispatcher *Dispatcher
}

// NewEchoAdapter mounts obj on an existing Echo instance
func NewEchoAdapter(e *echo.Echo, obj *facet.Object, opts ...Option) *EchoAdapter {
	o := buildOptions(opts)
	ea := &EchoAdapter{engine: e, dispatcher: NewDispatcher(obj, o.logger)}

	g := e.Group(o.prefix)
	g.GET("", ea.describe)
	g.POST("/:contract/:method", ea.call)
	return ea
}

// NewDefaultEchoAdapter mounts obj on a new Echo instance
func NewDefaultEchoAdapter(obj *facet.Object, opts ...Option) *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e, obj, opts...)
}

func (ea *EchoAdapter) describe(c echo.Context) error {
	return c.JSON(http.StatusOK, ea.dispatcher.Describe())
}

func (ea *EchoAdapter) call(c echo.Context) error {
	var req CallRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: facet.ArgumentErrorCode.String()})
	}
	status, body := ea.dispatcher.Call(c.Param("contract"), c.Param("method"), req)
	return c.JSON(status, body)
}

// ServeHTTP implements http.Handler
func (ea *EchoAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ea.engine.ServeHTTP(w, r)
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}
