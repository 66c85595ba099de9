package api

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"
)

// renderTimeout bounds one synchronous render request.
const renderTimeout = 30 * time.Minute

func RegisterHandlers(server *rest.Server, svcCtx *ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/render",
				Handler: RenderHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/jobs",
				Handler: JobsHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/health",
				Handler: HealthHandler(),
			},
		},
	)
}

// NewServer builds a rest server listening on host:port.
func NewServer(host string, port int) (*rest.Server, error) {
	var c rest.RestConf
	if err := conf.FillDefault(&c); err != nil {
		return nil, err
	}
	c.Name = "price2video"
	c.Host = host
	c.Port = port
	c.Timeout = renderTimeout.Milliseconds()
	return rest.NewServer(c)
}
