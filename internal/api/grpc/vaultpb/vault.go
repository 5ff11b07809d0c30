// Package vaultpb describes the vault.v1.Vault gRPC service. Messages are
// protobuf well-known types, so the service needs no generated code.
package vaultpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "vault.v1.Vault"

const (
	Vault_GetCredentials_FullMethodName   = "/vault.v1.Vault/GetCredentials"
	Vault_GetSavedCodes_FullMethodName    = "/vault.v1.Vault/GetSavedCodes"
	Vault_SaveCredentials_FullMethodName  = "/vault.v1.Vault/SaveCredentials"
	Vault_ClearCredentials_FullMethodName = "/vault.v1.Vault/ClearCredentials"
	Vault_CredentialsExist_FullMethodName = "/vault.v1.Vault/CredentialsExist"
)

// VaultServer is the server API for the Vault service. Every method answers
// with a Value that is null when the caller is denied or nothing is available.
type VaultServer interface {
	GetCredentials(context.Context, *emptypb.Empty) (*structpb.Value, error)
	GetSavedCodes(context.Context, *emptypb.Empty) (*structpb.Value, error)
	SaveCredentials(context.Context, *structpb.Struct) (*structpb.Value, error)
	ClearCredentials(context.Context, *emptypb.Empty) (*structpb.Value, error)
	CredentialsExist(context.Context, *emptypb.Empty) (*structpb.Value, error)
}

// UnimplementedVaultServer can be embedded to have forward compatible
// implementations.
type UnimplementedVaultServer struct{}

func (UnimplementedVaultServer) GetCredentials(context.Context, *emptypb.Empty) (*structpb.Value, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCredentials not implemented")
}

func (UnimplementedVaultServer) GetSavedCodes(context.Context, *emptypb.Empty) (*structpb.Value, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSavedCodes not implemented")
}

func (UnimplementedVaultServer) SaveCredentials(context.Context, *structpb.Struct) (*structpb.Value, error) {
	return nil, status.Error(codes.Unimplemented, "method SaveCredentials not implemented")
}

func (UnimplementedVaultServer) ClearCredentials(context.Context, *emptypb.Empty) (*structpb.Value, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearCredentials not implemented")
}

func (UnimplementedVaultServer) CredentialsExist(context.Context, *emptypb.Empty) (*structpb.Value, error) {
	return nil, status.Error(codes.Unimplemented, "method CredentialsExist not implemented")
}

// RegisterVaultServer registers srv on s.
func RegisterVaultServer(s grpc.ServiceRegistrar, srv VaultServer) {
	s.RegisterService(&Vault_ServiceDesc, srv)
}

func unaryHandler[Req any](
	fullMethod string,
	call func(VaultServer, context.Context, *Req) (*structpb.Value, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VaultServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Vault_ServiceDesc is the grpc.ServiceDesc for the Vault service.
var Vault_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetCredentials",
			Handler:    unaryHandler(Vault_GetCredentials_FullMethodName, VaultServer.GetCredentials),
		},
		{
			MethodName: "GetSavedCodes",
			Handler:    unaryHandler(Vault_GetSavedCodes_FullMethodName, VaultServer.GetSavedCodes),
		},
		{
			MethodName: "SaveCredentials",
			Handler:    unaryHandler(Vault_SaveCredentials_FullMethodName, VaultServer.SaveCredentials),
		},
		{
			MethodName: "ClearCredentials",
			Handler:    unaryHandler(Vault_ClearCredentials_FullMethodName, VaultServer.ClearCredentials),
		},
		{
			MethodName: "CredentialsExist",
			Handler:    unaryHandler(Vault_CredentialsExist_FullMethodName, VaultServer.CredentialsExist),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vault/v1/vault.proto",
}

// VaultClient is the client API for the Vault service.
type VaultClient interface {
	GetCredentials(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error)
	GetSavedCodes(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error)
	SaveCredentials(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error)
	ClearCredentials(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error)
	CredentialsExist(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error)
}

type vaultClient struct {
	cc grpc.ClientConnInterface
}

// NewVaultClient creates a client over cc.
func NewVaultClient(cc grpc.ClientConnInterface) VaultClient {
	return &vaultClient{cc: cc}
}

func (c *vaultClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) GetCredentials(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, Vault_GetCredentials_FullMethodName, in, opts)
}

func (c *vaultClient) GetSavedCodes(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, Vault_GetSavedCodes_FullMethodName, in, opts)
}

func (c *vaultClient) SaveCredentials(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, Vault_SaveCredentials_FullMethodName, in, opts)
}

func (c *vaultClient) ClearCredentials(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, Vault_ClearCredentials_FullMethodName, in, opts)
}

func (c *vaultClient) CredentialsExist(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Value, error) {
	return c.invoke(ctx, Vault_CredentialsExist_FullMethodName, in, opts)
}
