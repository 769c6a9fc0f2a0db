package sse

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
)

// DefaultInterval is the snapshot period used when none is configured.
const DefaultInterval = time.Second

// Snapshot returns the value published as one status event. It must be
// JSON-serializable.
type Snapshot func() any

// Component runs a Hub and publishes a status snapshot to it every
// interval while started.
type Component struct {
	hub      *Hub
	snapshot Snapshot
	interval time.Duration
	path     string
	log      *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a status stream served at path. A non-positive
// interval selects DefaultInterval.
func NewComponent(path string, interval time.Duration, snapshot Snapshot, log *logger.Logger) *Component {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logger.Get("sse")
	}
	return &Component{
		hub:      NewHub(log),
		snapshot: snapshot,
		interval: interval,
		path:     path,
		log:      log,
	}
}

// Hub returns the underlying hub.
func (c *Component) Hub() *Hub { return c.hub }

// Path returns the route the stream is served on.
func (c *Component) Path() string { return c.path }

// Handler serves the stream to one gin request with a generated client id.
func (c *Component) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ServeSSE(c.hub, ctx.Writer, ctx.Request, uuid.NewString())
	}
}

func (c *Component) Name() string { return "status-stream" }

// Start launches the hub and the publishing loop.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.running = true

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	go func() {
		defer c.wg.Done()
		c.publish(ctx)
	}()
	return nil
}

// Stop ends the publishing loop, closes every stream and waits for both
// goroutines. A stopped component cannot be restarted.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.cancel()
	c.hub.Stop()
	c.wg.Wait()
	c.running = false
	return nil
}

func (c *Component) publish(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.hub.ClientCount() == 0 {
				continue
			}
			data, err := encodeData(c.snapshot())
			if err != nil {
				c.log.Warn("Status snapshot not serializable", logger.Fields(logger.FieldError, err.Error()))
				continue
			}
			c.hub.Broadcast(Event{Name: EventStatus, Data: data})
		}
	}
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()

	if !running {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "stream not running"}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clients connected", c.hub.ClientCount()),
	}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Status Stream",
		Type:    "sse",
		Details: fmt.Sprintf("every %s on %s", c.interval, c.path),
	}
}
