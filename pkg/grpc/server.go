// Package grpc provides a lightweight JSON-over-TCP RPC framework for
// internal service-to-service calls: method registration, dispatch,
// newline-delimited request/response framing and a client.
//
//	s := grpc.NewServer(5 * time.Second)
//	s.Register(proto.MethodRecommend, func(ctx context.Context, req json.RawMessage) (any, error) { ... })
//	go s.ListenAndServe(":9000")
//
//	c, _ := grpc.Dial(ctx, "localhost:9000")
//	var resp proto.RecommendResponse
//	err := c.Call(ctx, proto.MethodRecommend, &proto.RecommendRequest{Title: "Heat"}, &resp)
package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Movie-Recommendation-Platform/pkg/logger"
)

// HandlerFunc processes an RPC request and returns a response or error.
type HandlerFunc func(ctx context.Context, req json.RawMessage) (any, error)

// Request is the wire format for an RPC request.
type Request struct {
	Method string          `json:"method"`
	ID     string          `json:"id"`
	Params json.RawMessage `json:"params"`
}

// Response is the wire format for an RPC response. Code carries the
// HTTP-equivalent status of a failed call.
type Response struct {
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  int             `json:"code,omitempty"`
}

// Server is a lightweight JSON-over-TCP RPC server.
type Server struct {
	handlers    map[string]HandlerFunc
	callTimeout time.Duration
	logger      *slog.Logger

	mu       sync.RWMutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// NewServer creates a server whose calls are each bounded by callTimeout
// (no bound when zero).
func NewServer(callTimeout time.Duration) *Server {
	return &Server{
		handlers:    make(map[string]HandlerFunc),
		callTimeout: callTimeout,
		conns:       make(map[net.Conn]struct{}),
		logger:      slog.Default().With("component", "rpc-server"),
		done:        make(chan struct{}),
	}
}

// Register adds a handler for the given "Service.Method" name.
func (s *Server) Register(method string, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = handler
	s.logger.Debug("method registered", "method", method)
}

func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("rpc server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("accept error", "error", err)
			continue
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		var req Request
		if err := decoder.Decode(&req); err != nil {
			return
		}
		resp := s.dispatch(req)
		if err := encoder.Encode(resp); err != nil {
			s.logger.Error("write error", "method", req.Method, "error", err)
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{ID: req.ID}

	s.mu.RLock()
	handler, exists := s.handlers[req.Method]
	s.mu.RUnlock()
	if !exists {
		resp.Error = fmt.Sprintf("unknown method: %s", req.Method)
		resp.Code = 404
		return resp
	}

	ctx := logger.WithRequestID(context.Background(), uuid.NewString())
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	start := time.Now()
	data, err := handler(ctx, req.Params)
	if err != nil {
		resp.Error = errorMessage(err)
		resp.Code = apperrors.HTTPStatusCode(err)
		s.logger.Debug("rpc call failed", "method", req.Method, "code", resp.Code, "took", time.Since(start))
		return resp
	}
	raw, err := json.Marshal(data)
	if err != nil {
		resp.Error = "encoding response failed"
		resp.Code = 500
		s.logger.Error("encoding rpc response", "method", req.Method, "error", err)
		return resp
	}
	resp.Data = raw
	s.logger.Debug("rpc call served", "method", req.Method, "took", time.Since(start))
	return resp
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// MethodCount returns the number of registered methods.
func (s *Server) MethodCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}

// Stop closes the listener and every open connection, then waits for the
// connection goroutines to exit.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
		s.logger.Info("rpc server stopped")
	})
}
