//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/facility-breach/internal/api/grpc/facility"
	"github.com/oshokin/facility-breach/internal/config"
	domain "github.com/oshokin/facility-breach/internal/facility"
)

// Client wraps the facility admin API with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the facility server.
	conn *grpc.ClientConn
	// api is the FacilityService client stub.
	api *api.FacilityServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// operator is attached to mutating requests.
	operator string
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithOperator tags mutating requests with operator.
func WithOperator(operator string) Option {
	return func(c *Client) {
		c.operator = operator
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errNotConnected is returned when a method is called on a client without a connection.
	errNotConnected = errors.New("client is not connected")
)

// Dial establishes a gRPC connection to the facility server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial facility server: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewFacilityServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ActivateGrid switches a grid on and reports whether anything changed.
func (c *Client) ActivateGrid(ctx context.Context, grid string) (bool, error) {
	return c.callBool(ctx, api.MethodActivateGrid, api.FieldChanged, map[string]any{api.FieldGrid: grid})
}

// DeactivateGrid switches a grid off and reports whether anything changed.
func (c *Client) DeactivateGrid(ctx context.Context, grid string) (bool, error) {
	return c.callBool(ctx, api.MethodDeactivateGrid, api.FieldChanged, map[string]any{api.FieldGrid: grid})
}

// Toggle flips "<grid>" or "<grid>_<subsystem>".
func (c *Client) Toggle(ctx context.Context, target string) (bool, error) {
	return c.callBool(ctx, api.MethodToggle, api.FieldChanged, map[string]any{api.FieldTarget: target})
}

// TriggerBreach latches the breach. It reports whether this call latched it.
func (c *Client) TriggerBreach(ctx context.Context) (bool, error) {
	return c.callBool(ctx, api.MethodTriggerBreach, api.FieldTriggered, map[string]any{})
}

// Interact performs action on a device.
func (c *Client) Interact(ctx context.Context, deviceID, action string) (bool, error) {
	return c.callBool(ctx, api.MethodInteract, api.FieldAccepted, map[string]any{
		api.FieldDevice: deviceID,
		api.FieldAction: action,
	})
}

// GetStatus retrieves the facility snapshot.
func (c *Client) GetStatus(ctx context.Context) (*domain.Status, error) {
	if c == nil || c.api == nil {
		return nil, errNotConnected
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	status, err := api.StatusFromStruct(resp)
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// callBool sends fields to method and reads the boolean result field.
func (c *Client) callBool(ctx context.Context, method, result string, fields map[string]any) (bool, error) {
	if c == nil || c.api == nil {
		return false, errNotConnected
	}

	if c.operator != "" {
		fields[api.FieldOperator] = c.operator
	}

	in, err := structpb.NewStruct(fields)
	if err != nil {
		return false, fmt.Errorf("encode %s request: %w", method, err)
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.Call(callCtx, method, in)
	if err != nil {
		return false, fmt.Errorf("%s: %w", method, err)
	}

	return resp.GetFields()[result].GetBoolValue(), nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
