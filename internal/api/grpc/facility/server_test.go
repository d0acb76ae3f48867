package facility

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/facility-breach/internal/device"
	"github.com/oshokin/facility-breach/internal/domain/power"
	domain "github.com/oshokin/facility-breach/internal/facility"
)

// fakeService implements Service for unit testing the transport.
type fakeService struct {
	// calls records every operation in order.
	calls []string
	// err is returned by every fallible operation when set.
	err error
	// status is returned by Status.
	status domain.Status
}

func (f *fakeService) ActivateGrid(_ context.Context, id string) (bool, error) {
	f.calls = append(f.calls, "activate "+id)

	return f.err == nil, f.err
}

func (f *fakeService) DeactivateGrid(_ context.Context, id string) (bool, error) {
	f.calls = append(f.calls, "deactivate "+id)

	return f.err == nil, f.err
}

func (f *fakeService) Toggle(_ context.Context, target string) (bool, error) {
	f.calls = append(f.calls, "toggle "+target)

	return f.err == nil, f.err
}

func (f *fakeService) TriggerBreach(context.Context) bool {
	f.calls = append(f.calls, "breach")

	return len(f.calls) == 1
}

func (f *fakeService) Interact(_ context.Context, deviceID, action string) (bool, error) {
	f.calls = append(f.calls, action+" "+deviceID)

	return f.err == nil, f.err
}

func (f *fakeService) Status() domain.Status { return f.status }

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()

	in, err := structpb.NewStruct(fields)
	require.NoError(t, err)

	return in
}

// TestServer_Validation ensures missing fields return InvalidArgument errors.
func TestServer_Validation(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)
	s := NewServer(svc)
	ctx := context.Background()

	_, err := s.ActivateGrid(ctx, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Toggle(ctx, request(t, map[string]any{FieldTarget: ""}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Interact(ctx, request(t, map[string]any{FieldDevice: "door-lab"}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	require.Empty(t, svc.calls)
}

// TestServer_ErrorMapping maps facility errors to status codes.
func TestServer_ErrorMapping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := map[error]codes.Code{
		domain.ErrUnknownTarget:     codes.NotFound,
		domain.ErrUnknownDevice:     codes.NotFound,
		domain.ErrUnsupportedAction: codes.InvalidArgument,
		power.ErrInvalidTarget:      codes.InvalidArgument,
		context.DeadlineExceeded:    codes.Internal,
	}

	for in, want := range cases {
		s := NewServer(&fakeService{err: in})

		_, err := s.Toggle(ctx, request(t, map[string]any{FieldTarget: "A"}))
		require.Equal(t, want, status.Code(err), in.Error())
	}
}

// TestServer_Operations checks that fields reach the service and results come back.
func TestServer_Operations(t *testing.T) {
	t.Parallel()

	svc := new(fakeService)
	s := NewServer(svc)
	ctx := context.Background()

	out, err := s.TriggerBreach(ctx, request(t, map[string]any{FieldOperator: "ops@host"}))
	require.NoError(t, err)
	require.True(t, out.GetFields()[FieldTriggered].GetBoolValue())

	out, err = s.ActivateGrid(ctx, request(t, map[string]any{FieldGrid: "A"}))
	require.NoError(t, err)
	require.True(t, out.GetFields()[FieldChanged].GetBoolValue())

	_, err = s.DeactivateGrid(ctx, request(t, map[string]any{FieldGrid: "B"}))
	require.NoError(t, err)

	out, err = s.Interact(ctx, request(t, map[string]any{FieldDevice: "door-lab", FieldAction: "interact"}))
	require.NoError(t, err)
	require.True(t, out.GetFields()[FieldAccepted].GetBoolValue())

	require.Equal(t, []string{"breach", "activate A", "deactivate B", "interact door-lab"}, svc.calls)
}

// TestStatus_RoundTrip encodes and decodes a snapshot.
func TestStatus_RoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := domain.Status{
		Breached:        true,
		BreachState:     "triggered",
		TriggeredAt:     at,
		Listeners:       1,
		EscapeRunning:   true,
		EscapeRemaining: 90 * time.Second,
		Grids: []domain.GridStatus{{
			ID:     "A",
			Active: true,
			Subsystems: []domain.SubsystemStatus{
				{ID: "security", Active: true, Usage: 30, Capacity: 50, Entities: []string{"door-lab"}},
			},
		}},
		Devices: []domain.DeviceStatus{
			{ID: "door-lab", Kind: device.KindDoor, State: map[string]any{"locked": true, "locked_interactions": 2}},
		},
	}

	encoded, err := StatusToStruct(in)
	require.NoError(t, err)

	out, err := StatusFromStruct(encoded)
	require.NoError(t, err)

	require.True(t, out.Breached)
	require.Equal(t, "triggered", out.BreachState)
	require.True(t, at.Equal(out.TriggeredAt))
	require.Equal(t, 1, out.Listeners)
	require.Equal(t, 90*time.Second, out.EscapeRemaining)
	require.Equal(t, in.Grids, out.Grids)
	require.Equal(t, device.KindDoor, out.Devices[0].Kind)
	require.Equal(t, true, out.Devices[0].State["locked"])
	require.InDelta(t, 2, out.Devices[0].State["locked_interactions"], 0)
}

// TestServiceDesc_OverConnection exercises the descriptor and client stub over an in-memory connection.
func TestServiceDesc_OverConnection(t *testing.T) {
	t.Parallel()

	lis := bufconn.Listen(1 << 20)
	svc := &fakeService{status: domain.Status{BreachState: "armed"}}

	grpcServer := grpc.NewServer()
	RegisterFacilityServiceServer(grpcServer, NewServer(svc))

	go func() {
		_ = grpcServer.Serve(lis)
	}()

	t.Cleanup(grpcServer.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })

	client := NewFacilityServiceClient(conn)
	ctx := context.Background()

	out, err := client.Call(ctx, MethodToggle, request(t, map[string]any{FieldTarget: "A_security"}))
	require.NoError(t, err)
	require.True(t, out.GetFields()[FieldChanged].GetBoolValue())

	_, err = client.Call(ctx, MethodToggle, request(t, map[string]any{}))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	st, err := client.GetStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, "armed", st.GetFields()["breach_state"].GetStringValue())

	require.Equal(t, []string{"toggle A_security"}, svc.calls)
}
