// Package grpcapi serves the game controls over gRPC. Messages are protobuf
// well-known types (Struct and Empty), so the service is registered with a
// hand-written ServiceDesc instead of generated stubs.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/runner"
)

const ServiceName = "suika.v1.Game"

// Controller is the part of runner.Runner the service drives.
type Controller interface {
	SelectMode(ctx context.Context, m game.Mode) error
	Restart(ctx context.Context) error
	ReturnToMenu(ctx context.Context) error
	Aim(ctx context.Context, x float64) error
	Drop(ctx context.Context) (bool, error)
	View(ctx context.Context) (game.View, error)
	Subscribe(ctx context.Context, s runner.Sink) (int, error)
	Unsubscribe(ctx context.Context, id int) error
}

// GameServer is the handler type checked by grpc.Server.RegisterService.
type GameServer interface {
	GetView(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	SelectMode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Restart(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ReturnToMenu(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Aim(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Drop(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Watch(*emptypb.Empty, grpc.ServerStream) error
}

type Service struct {
	ctl Controller
	log *log.Logger
}

func NewService(ctl Controller, logger *log.Logger) *Service {
	return &Service{ctl: ctl, log: logger}
}

// Register attaches the service to s.
func Register(s *grpc.Server, svc *Service) {
	s.RegisterService(&ServiceDesc, svc)
}

func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, game.ErrUnknownMode):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, game.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, runner.ErrStopped):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// toStruct converts any JSON-encodable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func (s *Service) view(ctx context.Context) (*structpb.Struct, error) {
	v, err := s.ctl.View(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := toStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Service) GetView(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.view(ctx)
}

func (s *Service) SelectMode(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name := in.GetFields()["mode"].GetStringValue()
	m, err := game.ParseMode(name)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.ctl.SelectMode(ctx, m); err != nil {
		return nil, toStatus(err)
	}
	return s.view(ctx)
}

func (s *Service) Restart(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ctl.Restart(ctx); err != nil {
		return nil, toStatus(err)
	}
	return s.view(ctx)
}

func (s *Service) ReturnToMenu(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ctl.ReturnToMenu(ctx); err != nil {
		return nil, toStatus(err)
	}
	return s.view(ctx)
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func (s *Service) Aim(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	x, ok := in.GetFields()["x"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "missing x")
	}
	if !finite(x.GetNumberValue()) {
		return nil, status.Error(codes.InvalidArgument, "x must be finite")
	}
	if err := s.ctl.Aim(ctx, x.GetNumberValue()); err != nil {
		return nil, toStatus(err)
	}
	return s.view(ctx)
}

// Drop optionally aims at "x" first. The reply carries "dropped" and "view".
func (s *Service) Drop(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if x, ok := in.GetFields()["x"]; ok {
		if !finite(x.GetNumberValue()) {
			return nil, status.Error(codes.InvalidArgument, "x must be finite")
		}
		if err := s.ctl.Aim(ctx, x.GetNumberValue()); err != nil {
			return nil, toStatus(err)
		}
	}
	dropped, err := s.ctl.Drop(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	v, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"dropped": structpb.NewBoolValue(dropped),
		"view":    structpb.NewStructValue(v),
	}}, nil
}

// streamSink forwards frames to a Watch stream.
type streamSink struct {
	frames chan runner.Frame
	once   sync.Once
	done   chan struct{}
}

func (k *streamSink) Send(f runner.Frame) error {
	select {
	case k.frames <- f:
		return nil
	default:
		return errors.New("grpcapi: watcher too slow")
	}
}

func (k *streamSink) Close() error {
	k.once.Do(func() { close(k.done) })
	return nil
}

// Watch streams frames until the client goes away or is dropped.
func (s *Service) Watch(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ctx := stream.Context()
	sk := &streamSink{frames: make(chan runner.Frame, 64), done: make(chan struct{})}
	id, err := s.ctl.Subscribe(ctx, sk)
	if err != nil {
		return toStatus(err)
	}
	defer func() {
		_ = s.ctl.Unsubscribe(context.WithoutCancel(ctx), id)
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sk.done:
			return status.Error(codes.Unavailable, "watch dropped")
		case f := <-sk.frames:
			msg, err := toStruct(f)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.SendMsg(msg); err != nil {
				if s.log != nil {
					s.log.Printf("grpc watch send: %v", err)
				}
				return err
			}
		}
	}
}

func unaryMethod[T any, PT interface {
	*T
	proto.Message
}](name string, call func(GameServer, context.Context, PT) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PT(new(T))
			if err := dec(in); err != nil {
				return nil, err
			}
			gs := srv.(GameServer)
			if interceptor == nil {
				return call(gs, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(gs, ctx, req.(PT))
			})
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(GameServer).Watch(in, stream)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("GetView", GameServer.GetView),
		unaryMethod("SelectMode", GameServer.SelectMode),
		unaryMethod("Restart", GameServer.Restart),
		unaryMethod("ReturnToMenu", GameServer.ReturnToMenu),
		unaryMethod("Aim", GameServer.Aim),
		unaryMethod("Drop", GameServer.Drop),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "suika/v1/game.proto",
}
