package server

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/stagekit/component"
)

const componentName = "status-server"

var (
	_ component.Component     = (*ServerComponent)(nil)
	_ component.Describable   = (*ServerComponent)(nil)
	_ component.RouteProvider = (*ServerComponent)(nil)
)

// ServerComponent hosts a Server in a component.Registry.
type ServerComponent struct {
	server *Server
}

func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

func (sc *ServerComponent) Name() string { return componentName }

func (sc *ServerComponent) Start(ctx context.Context) error { return sc.server.Start(ctx) }

func (sc *ServerComponent) Stop(ctx context.Context) error { return sc.server.Stop(ctx) }

func (sc *ServerComponent) Health(_ context.Context) component.Health {
	h := component.Health{Name: componentName, Status: component.StatusHealthy}
	if !sc.server.Serving() {
		h.Status = component.StatusUnhealthy
		h.Message = "status server not serving"
	}
	return h
}

func (sc *ServerComponent) Describe() component.Description {
	return component.Description{
		Name:    "Status Server",
		Type:    "server",
		Details: sc.server.Addr(),
		Port:    sc.server.config.Port,
	}
}

// Routes lists the registered routes for the startup summary: pipeline
// routes by path, then the probes.
func (sc *ServerComponent) Routes() []component.Route {
	infos := sc.server.engine.Routes()
	slices.SortFunc(infos, func(a, b gin.RouteInfo) int {
		return cmp.Or(
			cmp.Compare(probeRank(a.Path), probeRank(b.Path)),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(methodOrder(a.Method), methodOrder(b.Method)),
		)
	})

	routes := make([]component.Route, len(infos))
	for i, r := range infos {
		routes[i] = component.Route{Method: r.Method, Path: r.Path, Handler: formatHandlerName(r.Handler)}
	}
	return routes
}

func probeRank(path string) int {
	if path == PathHealth || path == PathAlive || path == PathReady {
		return 1
	}
	return 0
}

var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// methodOrder sorts GET first and DELETE last; other methods follow.
func methodOrder(method string) int {
	if i := slices.Index(methods, method); i >= 0 {
		return i
	}
	return len(methods)
}

// formatHandlerName shortens the function name gin records for a handler.
// Handler constructors such as endpoint.Topology become "topology"; method
// values keep their receiver, "port.(*UserPort).List-fm" is "UserPort.List".
func formatHandlerName(full string) string {
	name := strings.TrimSuffix(full, "-fm")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)

	parts := strings.Split(name, ".")
	closure := false
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
		closure = true
	}
	if closure {
		return strings.ToLower(parts[len(parts)-1])
	}
	if len(parts) > 1 && parts[0] == strings.ToLower(parts[0]) {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}
