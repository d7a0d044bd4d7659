package status

import (
	"encoding/json"
	"fmt"
	"net"

	"github.com/jackwhelpton/fasthttp-routing/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type APIServer struct {
	Tracker *Tracker
	server  *fasthttp.Server
}

func NewAPIServer(tracker *Tracker) *APIServer {
	a := &APIServer{Tracker: tracker}
	a.server = &fasthttp.Server{Handler: a.Handler()}
	return a
}

func (a *APIServer) Handler() fasthttp.RequestHandler {
	router := routing.New()

	router.Get("/progress", a.progressHandler())
	router.Get("/metrics", a.metricsHandler())

	return router.HandleRequest
}

func (a *APIServer) ListenAndServe(addr string) error {
	return a.server.ListenAndServe(addr)
}

func (a *APIServer) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

func (a *APIServer) Shutdown() error {
	return a.server.Shutdown()
}

func (a *APIServer) progressHandler() routing.Handler {
	return func(c *routing.Context) error {
		b, err := json.Marshal(a.Tracker.Snapshot())
		if err != nil {
			return fmt.Errorf("could not marshal progress: err = %w", err)
		}
		c.SetContentType("application/json")
		return c.Write(b)
	}
}

func (a *APIServer) metricsHandler() routing.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(a.Tracker.Registry(), promhttp.HandlerOpts{}),
	)
	return func(c *routing.Context) error {
		handler(c.RequestCtx)
		return nil
	}
}
