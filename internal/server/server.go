// Package server exposes the guardrail registry over gRPC and applies
// configuration file changes at runtime.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/guardrails/internal/alert"
	"github.com/ppiankov/guardrails/internal/audit"
	"github.com/ppiankov/guardrails/internal/config"
	"github.com/ppiankov/guardrails/internal/diagnostics"
	"github.com/ppiankov/guardrails/internal/guardrail"
	"github.com/ppiankov/guardrails/internal/logging"
	"github.com/ppiankov/guardrails/internal/metrics"
	"github.com/ppiankov/guardrails/internal/registry"
	"github.com/ppiankov/guardrails/internal/rpc"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

// Audit and metrics sources of reconfigurations.
const (
	SourceGRPC = "grpc"
	SourceFile = "file"
)

// RemoteUser is the client state user for values checked over gRPC.
const RemoteUser = "grpc"

// Options configures a Server.
type Options struct {
	// ConfigPath is re-read by Reload.
	ConfigPath string
	// Listen overrides the configured listen address.
	Listen   string
	Logger   *logging.Logger
	Recorder *metrics.Recorder
}

// Server implements the GuardrailService gRPC server.
type Server struct {
	opts       Options
	listen     string
	logger     *logging.Logger
	recorder   *metrics.Recorder
	hash       *diagnostics.ConfigHash
	auditLog   *audit.Log
	audit      *diagnostics.AuditSink
	dispatcher *alert.Dispatcher
	registry   *registry.Registry
	table      *thresholds.Table

	grpcServer *grpc.Server
}

// New creates a server for cfg, whose raw bytes hash to hash.
func New(cfg *config.Config, hash string, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		opts:     opts,
		listen:   cfg.Server.Listen,
		logger:   logger,
		recorder: opts.Recorder,
		hash:     &diagnostics.ConfigHash{},
	}
	if opts.Listen != "" {
		s.listen = opts.Listen
	}
	s.hash.Set(hash)

	if cfg.AuditLog != "" {
		log, err := audit.Open(cfg.AuditLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		s.auditLog = log
		s.audit = diagnostics.NewAuditSink(log, s.hash, logger.Logger)
	}

	s.dispatcher = alert.NewDispatcher(cfg.Alerts, logger.Logger)

	sinks := []guardrail.Diagnostics{
		diagnostics.NewLogSink(logger.Logger),
		diagnostics.NewMetricsSink(s.recorder),
		diagnostics.NewAlertSink(s.dispatcher, s.hash),
	}
	if s.audit != nil {
		sinks = append(sinks, s.audit)
	}

	reg, err := registry.New(cfg.Guardrails, diagnostics.Multi(sinks...))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.registry = reg
	s.table = thresholds.NewTable(reg)
	s.publishThresholds()

	s.grpcServer = grpc.NewServer()
	rpc.RegisterGuardrailServiceServer(s.grpcServer, s)
	return s, nil
}

// Registry returns the registry served by s.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// ConfigHash returns the hash of the last applied configuration.
func (s *Server) ConfigHash() string {
	return s.hash.Get()
}

// Serve listens on the configured address. Blocks until stopped.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}
	return s.ServeOn(lis)
}

// ServeOn serves on the given listener.
func (s *Server) ServeOn(lis net.Listener) error {
	s.logger.Info("serving guardrails", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// GracefulStop drains in-flight calls and stops the server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Close waits for pending alerts and closes the audit log.
func (s *Server) Close() error {
	if s.dispatcher != nil {
		s.dispatcher.Wait()
	}
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// Reload re-reads the configuration file and applies it. Sections that
// fail validation keep their previous state; the others are applied.
func (s *Server) Reload() error {
	cfg, hash, err := config.LoadConfigWithHash(s.opts.ConfigPath)
	if err != nil {
		err = fmt.Errorf("failed to reload config: %w", err)
		s.reconfigured(SourceFile, "config", "", err)
		return err
	}

	s.hash.Set(hash)
	if err := s.logger.SetLevel(cfg.Log.Level); err != nil {
		s.logger.Warn("keeping log level", zap.Error(err))
	}

	err = s.registry.Apply(cfg.Guardrails)
	s.reconfigured(SourceFile, "config", hash, err)
	s.publishThresholds()
	return err
}

func (s *Server) reconfigured(source, name, detail string, err error) {
	s.audit.Reconfigured(source, name, detail, err)
	s.recorder.ObserveReconfiguration(source, err)
	if err != nil {
		s.logger.Warn("reconfiguration rejected",
			zap.String("source", source),
			zap.String("guardrail", name),
			zap.Error(err))
		return
	}
	s.logger.Info("reconfigured",
		zap.String("source", source),
		zap.String("guardrail", name),
		zap.String("detail", detail))
}

func (s *Server) publishThresholds() {
	for _, e := range s.table.ReadAll() {
		s.recorder.SetThreshold(e.Name, e.Warn, e.Fail)
	}
}

// ListThresholds implements the ListThresholds RPC.
func (s *Server) ListThresholds(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := rpc.EncodeEntries(s.table.ReadAll())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode thresholds: %v", err)
	}
	return out, nil
}

// ApplyThreshold implements the ApplyThreshold RPC.
func (s *Server) ApplyThreshold(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	u, err := rpc.DecodeUpdate(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if _, ok := s.registry.Threshold(u.Name); !ok {
		return nil, status.Errorf(codes.NotFound, "there is no such guardrail with name %s", u.Name)
	}

	err = s.table.Apply(u)
	detail := ""
	if u.Warn != nil && u.Fail != nil {
		detail = fmt.Sprintf("warn=%d fail=%d", *u.Warn, *u.Fail)
	}
	s.reconfigured(SourceGRPC, u.Name, detail, err)
	if err != nil {
		return nil, toStatus(err)
	}
	s.publishThresholds()
	return &emptypb.Empty{}, nil
}

// GetCustomConfig implements the GetCustomConfig RPC.
func (s *Server) GetCustomConfig(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	g, ok := s.registry.Custom(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.NotFound, "there is no such guardrail with name %s", req.GetValue())
	}
	out, err := structpb.NewStruct(g.Parameters().Map())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode config: %v", err)
	}
	return out, nil
}

// SetCustomConfig implements the SetCustomConfig RPC.
func (s *Server) SetCustomConfig(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	name, cfg := rpc.DecodeCustomConfig(req)
	g, ok := s.registry.Custom(name)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "there is no such guardrail with name %s", name)
	}

	err := g.Reconfigure(guardrail.CustomConfigFrom(cfg))
	s.reconfigured(SourceGRPC, name, fmt.Sprintf("%d parameters", len(cfg)), err)
	if err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// GuardValue implements the GuardValue RPC. The value is checked as an
// ordinary user; warnings are returned instead of being sent to a client.
func (s *Server) GuardValue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := rpc.DecodeGuardRequest(req)
	warnings := &guardrail.WarningCollector{}
	state := &guardrail.ClientState{User: RemoteUser, Warnings: warnings}

	var err error
	kind, _ := s.registry.KindOf(r.Guardrail)
	switch kind {
	case registry.KindThreshold:
		t, _ := s.registry.Threshold(r.Guardrail)
		n, ok := r.Value.(int64)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "guardrail %s expects an integer value", r.Guardrail)
		}
		err = t.Guard(n, s.registry.Describe(r.Guardrail), false, state)
	case registry.KindFlag:
		f, _ := s.registry.Flag(r.Guardrail)
		err = f.EnsureEnabled(state)
	case registry.KindCustom:
		g, _ := s.registry.Custom(r.Guardrail)
		v, ok := r.Value.(string)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "guardrail %s expects a string value", r.Guardrail)
		}
		err = g.Guard(v, state)
	default:
		return nil, status.Errorf(codes.NotFound, "there is no such guardrail with name %s", r.Guardrail)
	}

	result := rpc.GuardResult{Warnings: warnings.Warnings()}
	if err != nil {
		v, ok := guardrail.AsViolation(err)
		if !ok {
			return nil, toStatus(err)
		}
		result.Violated = true
		result.Message = v.Message
		result.RedactedMessage = v.RedactedMessage
	}

	out, err := rpc.EncodeGuardResult(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return out, nil
}

// GenerateValue implements the GenerateValue RPC.
func (s *Server) GenerateValue(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	r, err := rpc.DecodeGenerateRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	g, ok := s.registry.Custom(r.Guardrail)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "there is no such guardrail with name %s", r.Guardrail)
	}

	var value string
	if r.Size != 0 {
		value, err = g.GenerateSize(r.Size)
	} else {
		value, err = g.Generate()
	}
	if err != nil {
		return nil, toStatus(err)
	}
	s.recorder.ObserveGenerated()
	return wrapperspb.String(value), nil
}

func toStatus(err error) error {
	var re *thresholds.RequestError
	switch {
	case errors.As(err, &re), guardrail.IsConfigurationError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
