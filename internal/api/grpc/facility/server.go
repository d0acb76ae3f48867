package facility

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/facility-breach/internal/domain/power"
	domain "github.com/oshokin/facility-breach/internal/facility"
	"github.com/oshokin/facility-breach/internal/logger"
)

// Service abstracts the facility operations the transport layer depends on.
type Service interface {
	ActivateGrid(ctx context.Context, id string) (bool, error)
	DeactivateGrid(ctx context.Context, id string) (bool, error)
	Toggle(ctx context.Context, target string) (bool, error)
	TriggerBreach(ctx context.Context) bool
	Interact(ctx context.Context, deviceID, action string) (bool, error)
	Status() domain.Status
}

// Server implements FacilityServiceServer on top of a Service.
type Server struct {
	// service provides the facility operations.
	service Service
}

var _ FacilityServiceServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ActivateGrid switches a grid on.
func (s *Server) ActivateGrid(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredField(in, FieldGrid)
	if err != nil {
		return nil, err
	}

	changed, err := s.service.ActivateGrid(withOperator(ctx, in), id)
	if err != nil {
		return nil, toStatusError(err)
	}

	return resultStruct(FieldChanged, changed), nil
}

// DeactivateGrid switches a grid off.
func (s *Server) DeactivateGrid(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredField(in, FieldGrid)
	if err != nil {
		return nil, err
	}

	changed, err := s.service.DeactivateGrid(withOperator(ctx, in), id)
	if err != nil {
		return nil, toStatusError(err)
	}

	return resultStruct(FieldChanged, changed), nil
}

// Toggle flips a grid or a subsystem.
func (s *Server) Toggle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	target, err := requiredField(in, FieldTarget)
	if err != nil {
		return nil, err
	}

	changed, err := s.service.Toggle(withOperator(ctx, in), target)
	if err != nil {
		return nil, toStatusError(err)
	}

	return resultStruct(FieldChanged, changed), nil
}

// TriggerBreach latches the breach.
func (s *Server) TriggerBreach(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	triggered := s.service.TriggerBreach(withOperator(ctx, in))

	return resultStruct(FieldTriggered, triggered), nil
}

// Interact performs an action on a device.
func (s *Server) Interact(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	deviceID, err := requiredField(in, FieldDevice)
	if err != nil {
		return nil, err
	}

	action, err := requiredField(in, FieldAction)
	if err != nil {
		return nil, err
	}

	accepted, err := s.service.Interact(withOperator(ctx, in), deviceID, action)
	if err != nil {
		return nil, toStatusError(err)
	}

	return resultStruct(FieldAccepted, accepted), nil
}

// GetStatus returns the facility snapshot.
func (s *Server) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	out, err := StatusToStruct(s.service.Status())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return out, nil
}

// requiredField reads a non-empty string field or fails with InvalidArgument.
func requiredField(in *structpb.Struct, name string) (string, error) {
	value := in.GetFields()[name].GetStringValue()
	if value == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}

	return value, nil
}

// withOperator tags the request context with the caller, when provided.
func withOperator(ctx context.Context, in *structpb.Struct) context.Context {
	if operator := in.GetFields()[FieldOperator].GetStringValue(); operator != "" {
		return logger.WithKV(ctx, FieldOperator, operator)
	}

	return ctx
}

func resultStruct(name string, value bool) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			name: structpb.NewBoolValue(value),
		},
	}
}

// toStatusError maps facility errors to gRPC status codes.
func toStatusError(err error) error {
	switch {
	case errors.Is(err, power.ErrInvalidTarget), errors.Is(err, domain.ErrUnsupportedAction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrUnknownTarget), errors.Is(err, domain.ErrUnknownDevice):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, "facility operation failed")
	}
}
