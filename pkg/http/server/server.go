package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

type Server interface {
	// Listen binds the port. Serve must follow.
	Listen() (net.Addr, error)
	Serve() error
	Shutdown(ctx context.Context) error
}

type server struct {
	httpSrv *http.Server
	ln      net.Listener
	log     *zap.Logger
}

func newServer(log *zap.Logger, conf Config, handler http.Handler) Server {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(conf.Port),
		Handler:           handler,
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		WriteTimeout:      conf.WriteTimeout,
	}
	return &server{
		httpSrv: srv,
		log:     log,
	}
}

func (s *server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		s.log.Error("failed to listen", zap.Error(err))
		return nil, err
	}
	s.ln = ln
	s.log.Info("starting HTTP server at", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

func (s *server) Serve() error {
	if s.ln == nil {
		return errors.New("http server: Listen must be called before Serve")
	}
	if err := s.httpSrv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("HTTP server stopped with error", zap.Error(err))
		return err
	}
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
