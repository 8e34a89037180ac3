package grpcapi

import (
	"context"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the Game service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) invoke(ctx context.Context, method string, in any) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetView(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetView", &emptypb.Empty{})
}

func (c *Client) SelectMode(ctx context.Context, mode string) (*structpb.Struct, error) {
	in, _ := structpb.NewStruct(map[string]any{"mode": mode})
	return c.invoke(ctx, "SelectMode", in)
}

func (c *Client) Restart(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "Restart", &emptypb.Empty{})
}

func (c *Client) ReturnToMenu(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, "ReturnToMenu", &emptypb.Empty{})
}

func (c *Client) Aim(ctx context.Context, x float64) (*structpb.Struct, error) {
	in, _ := structpb.NewStruct(map[string]any{"x": x})
	return c.invoke(ctx, "Aim", in)
}

func (c *Client) Drop(ctx context.Context) (bool, error) {
	out, err := c.invoke(ctx, "Drop", &structpb.Struct{})
	if err != nil {
		return false, err
	}
	return out.GetFields()["dropped"].GetBoolValue(), nil
}

// Watch calls fn for every streamed frame until ctx ends, the stream closes
// or fn returns false.
func (c *Client) Watch(ctx context.Context, fn func(*structpb.Struct) bool) error {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], "/"+ServiceName+"/Watch")
	if err != nil {
		return err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}
	for {
		f := new(structpb.Struct)
		if err := stream.RecvMsg(f); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !fn(f) {
			return nil
		}
	}
}
