// Package client talks to a running guardrails server over gRPC.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/ppiankov/guardrails/internal/rpc"
	"github.com/ppiankov/guardrails/internal/thresholds"
)

// DefaultTimeout bounds every call.
const DefaultTimeout = 5 * time.Second

// Client connects to a guardrails gRPC server.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// New creates a gRPC client for the given address. The connection is
// established lazily on the first call.
func New(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to guardrails server: %w", err)
	}
	return &Client{conn: conn, timeout: DefaultTimeout}, nil
}

// ListThresholds returns every threshold row.
func (c *Client) ListThresholds() ([]thresholds.Entry, error) {
	out := new(structpb.Struct)
	if err := c.invoke(rpc.ListThresholdsMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return rpc.DecodeEntries(out)
}

// ApplyThreshold updates one threshold row.
func (c *Client) ApplyThreshold(u thresholds.Update) error {
	return c.invoke(rpc.ApplyThresholdMethod, rpc.EncodeUpdate(u), new(emptypb.Empty))
}

// GetCustomConfig returns the effective configuration of a custom
// guardrail.
func (c *Client) GetCustomConfig(name string) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.invoke(rpc.GetCustomConfigMethod, wrapperspb.String(name), out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

// SetCustomConfig reconfigures a custom guardrail.
func (c *Client) SetCustomConfig(name string, cfg map[string]any) error {
	in, err := rpc.EncodeCustomConfig(name, cfg)
	if err != nil {
		return err
	}
	return c.invoke(rpc.SetCustomConfigMethod, in, new(emptypb.Empty))
}

// GuardValue checks value against the named guardrail as an ordinary user.
func (c *Client) GuardValue(guardrail string, value any) (rpc.GuardResult, error) {
	in, err := rpc.EncodeGuardRequest(rpc.GuardRequest{Guardrail: guardrail, Value: value})
	if err != nil {
		return rpc.GuardResult{}, fmt.Errorf("failed to encode value: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.invoke(rpc.GuardValueMethod, in, out); err != nil {
		return rpc.GuardResult{}, err
	}
	return rpc.DecodeGuardResult(out), nil
}

// GenerateValue asks the named guardrail for a valid value. Size 0 uses
// the generator's default.
func (c *Client) GenerateValue(guardrail string, size int) (string, error) {
	out := new(wrapperspb.StringValue)
	in := rpc.EncodeGenerateRequest(rpc.GenerateRequest{Guardrail: guardrail, Size: size})
	if err := c.invoke(rpc.GenerateValueMethod, in, out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(method string, in, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.conn.Invoke(ctx, method, in, out)
}
