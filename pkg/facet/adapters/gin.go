package adapters

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toyz/facet/pkg/facet"
)

// GinAdapter serves a synthesized object with Gin
type GinAdapter struct {
	engine     *gin.Engine
	dispatcher *Dispatcher

	mu     sync.Mutex
	server *http.Server
}

// NewGinAdapter mounts obj on an existing Gin engine
func NewGinAdapter(g *gin.Engine, obj *facet.Object, opts ...Option) *GinAdapter {
	o := buildOptions(opts)
	ga := &GinAdapter{engine: g, dispatcher: NewDispatcher(obj, o.logger)}

	group := g.Group(o.prefix)
	group.GET("", ga.describe)
	group.POST("/:contract/:method", ga.call)
	return ga
}

// NewDefaultGinAdapter mounts obj on a new Gin engine with the recovery middleware
func NewDefaultGinAdapter(obj *facet.Object, opts ...Option) *GinAdapter {
	g := gin.New()
	g.Use(gin.Recovery())
	return NewGinAdapter(g, obj, opts...)
}

func (ga *GinAdapter) describe(c *gin.Context) {
	c.JSON(http.StatusOK, ga.dispatcher.Describe())
}

func (ga *GinAdapter) call(c *gin.Context) {
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error(), Code: facet.ArgumentErrorCode.String()})
		return
	}
	status, body := ga.dispatcher.Call(c.Param("contract"), c.Param("method"), req)
	c.JSON(status, body)
}

// ServeHTTP implements http.Handler
func (ga *GinAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ga.engine.ServeHTTP(w, r)
}

// Start starts the server
func (ga *GinAdapter) Start(addr string) error {
	ga.mu.Lock()
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	srv := ga.server
	ga.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (ga *GinAdapter) Stop(ctx context.Context) error {
	ga.mu.Lock()
	srv := ga.server
	ga.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}
