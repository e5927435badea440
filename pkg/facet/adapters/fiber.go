package adapters

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/facet/pkg/facet"
)

// FiberAdapter serves a synthesized object with Fiber
type FiberAdapter struct {
	app        *fiber.App
	dispatcher *Dispatcher
}

// NewFiberAdapter mounts obj on an existing Fiber app
func NewFiberAdapter(app *fiber.App, obj *facet.Object, opts ...Option) *FiberAdapter {
	o := buildOptions(opts)
	fa := &FiberAdapter{app: app, dispatcher: NewDispatcher(obj, o.logger)}

	group := app.Group(o.prefix)
	group.Get("", fa.describe)
	group.Post("/:contract/:method", fa.call)
	return fa
}

// NewDefaultFiberAdapter mounts obj on a new Fiber app with the recover middleware
func NewDefaultFiberAdapter(obj *facet.Object, opts ...Option) *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorBody{Error: err.Error(), Code: facet.HandlerExecutionErrorCode.String()})
		},
	})
	app.Use(recover.New())
	return NewFiberAdapter(app, obj, opts...)
}

func (fa *FiberAdapter) describe(c *fiber.Ctx) error {
	return c.JSON(fa.dispatcher.Describe())
}

func (fa *FiberAdapter) call(c *fiber.Ctx) error {
	var req CallRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorBody{Error: err.Error(), Code: facet.ArgumentErrorCode.String()})
	}
	status, body := fa.dispatcher.Call(c.Params("contract"), c.Params("method"), req)
	return c.Status(status).JSON(body)
}

// Start starts the server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}
