package operator

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-ap/internal/domain/alarm"
	"github.com/oshokin/alarm-ap/internal/logger"
)

// Status field names.
const (
	FieldAlarmActive  = "alarm_active"
	FieldBeepActive   = "beep_active"
	FieldPhase        = "phase"
	FieldListening    = "listening"
	FieldConnections  = "connections"
	FieldDisplayLine1 = "display_line1"
	FieldDisplayLine2 = "display_line2"
	FieldUpdatedAt    = "updated_at"
	FieldChangedAt    = "changed_at"

	FieldHostname = "hostname"
	FieldUsername = "username"
)

// Controller is what the operator service needs from the control loop.
type Controller interface {
	Snapshot() *domain.Snapshot
	RequestShutdown(ctx context.Context, actor *domain.Actor)
}

// Server implements OperatorServer on top of a Controller.
type Server struct {
	// controller publishes snapshots and accepts shutdown requests.
	controller Controller
}

// NewServer wires the controller into a gRPC handler.
func NewServer(controller Controller) *Server {
	return &Server{
		controller: controller,
	}
}

// GetStatus returns the last published snapshot.
func (s *Server) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	snap := s.controller.Snapshot()
	if snap == nil {
		return nil, status.Error(codes.Unavailable, "controller has not started")
	}

	return ToStruct(snap), nil
}

// Shutdown asks the controller to stop.
func (s *Server) Shutdown(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	actor := ActorFromStruct(req)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	logger.InfoKV(ctx, "Operator shutdown received", "actor", actor)
	s.controller.RequestShutdown(ctx, actor)

	return new(emptypb.Empty), nil
}

// ToStruct converts a snapshot to the status message.
func ToStruct(snap *domain.Snapshot) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldAlarmActive:  structpb.NewBoolValue(snap.Active),
			FieldBeepActive:   structpb.NewBoolValue(snap.BeepActive),
			FieldPhase:        structpb.NewStringValue(snap.Phase.String()),
			FieldListening:    structpb.NewBoolValue(snap.Listening),
			FieldConnections:  structpb.NewNumberValue(float64(snap.Connections)),
			FieldDisplayLine1: structpb.NewStringValue(snap.Display.Line1),
			FieldDisplayLine2: structpb.NewStringValue(snap.Display.Line2),
			FieldUpdatedAt:    structpb.NewStringValue(snap.Timestamp.UTC().Format(time.RFC3339Nano)),
			FieldChangedAt:    structpb.NewStringValue(snap.ChangedAt.UTC().Format(time.RFC3339Nano)),
		},
	}
}

// ActorToStruct converts an actor to the shutdown request message.
func ActorToStruct(actor *domain.Actor) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldHostname: structpb.NewStringValue(actor.Hostname),
			FieldUsername: structpb.NewStringValue(actor.Username),
		},
	}
}

// ActorFromStruct reads the actor of a shutdown request. It returns nil when
// neither hostname nor username is set.
func ActorFromStruct(req *structpb.Struct) *domain.Actor {
	fields := req.GetFields()

	actor := &domain.Actor{
		Hostname: fields[FieldHostname].GetStringValue(),
		Username: fields[FieldUsername].GetStringValue(),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}
