package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/loginvault/internal/api/grpc/vaultpb"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/token"
)

var flagAddr = &cli.StringFlag{
	Name:    "addr",
	Value:   "127.0.0.1:50051",
	Usage:   "Vault gRPC address",
	EnvVars: []string{"VAULTCTL_ADDR"},
}

var flagTLS = &cli.BoolFlag{
	Name:  "tls",
	Usage: "Connect with TLS using the system roots",
}

var flagTimeout = &cli.DurationFlag{
	Name:  "timeout",
	Value: 5 * time.Second,
	Usage: "Per-call timeout",
}

var flagToken = &cli.StringFlag{
	Name:    "token",
	Usage:   "Sender token to present; minted from the flags below when empty",
	EnvVars: []string{"VAULTCTL_TOKEN"},
}

var flagTokenSecret = &cli.StringFlag{
	Name:    "token-secret",
	Usage:   "Secret used to sign sender tokens",
	EnvVars: []string{"SENDER_TOKEN_SECRET"},
}

var flagTokenTTL = &cli.DurationFlag{
	Name:    "token-ttl",
	Value:   5 * time.Minute,
	EnvVars: []string{"SENDER_TOKEN_TTL"},
}

var flagExtensionID = &cli.StringFlag{
	Name:    "extension-id",
	Value:   "loginvault-extension",
	EnvVars: []string{"SENDER_EXTENSION_ID"},
}

var flagSurface = &cli.StringFlag{
	Name:  "surface",
	Value: string(model.SurfaceUI),
	Usage: "Sender surface: ui or page",
}

var flagURL = &cli.StringFlag{
	Name:  "url",
	Usage: "Page URL for the page surface",
}

var senderFlags = []cli.Flag{flagTokenSecret, flagTokenTTL, flagExtensionID, flagSurface, flagURL}

var flagCompany = &cli.StringFlag{Name: "company", Required: true, Usage: "Company code"}
var flagEmployee = &cli.StringFlag{Name: "employee", Required: true, Usage: "Employee code"}
var flagPassword = &cli.StringFlag{
	Name:     "password",
	Required: true,
	Usage:    "Password",
	EnvVars:  []string{"VAULTCTL_PASSWORD"},
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "vaultctl",
		Usage: "talk to a loginvault service",
		Flags: []cli.Flag{flagAddr, flagTLS, flagTimeout, flagToken},
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "mint a sender token",
				Flags: senderFlags,
				Action: func(cCtx *cli.Context) error {
					tok, err := mintToken(cCtx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cCtx.App.Writer, tok)
					return nil
				},
			},
			vaultCommand("get", "print saved credentials", func(ctx context.Context, c vaultpb.VaultClient, _ *cli.Context) (*structpb.Value, error) {
				return c.GetCredentials(ctx, &emptypb.Empty{})
			}),
			vaultCommand("codes", "print saved company and employee codes", func(ctx context.Context, c vaultpb.VaultClient, _ *cli.Context) (*structpb.Value, error) {
				return c.GetSavedCodes(ctx, &emptypb.Empty{})
			}),
			vaultCommand("save", "save credentials", func(ctx context.Context, c vaultpb.VaultClient, cCtx *cli.Context) (*structpb.Value, error) {
				in, err := structpb.NewStruct(map[string]any{
					"companyCode":  cCtx.String(flagCompany.Name),
					"employeeCode": cCtx.String(flagEmployee.Name),
					"password":     cCtx.String(flagPassword.Name),
				})
				if err != nil {
					return nil, err
				}
				return c.SaveCredentials(ctx, in)
			}, flagCompany, flagEmployee, flagPassword),
			vaultCommand("clear", "remove saved credentials and the session key", func(ctx context.Context, c vaultpb.VaultClient, _ *cli.Context) (*structpb.Value, error) {
				return c.ClearCredentials(ctx, &emptypb.Empty{})
			}),
			vaultCommand("exists", "report whether credentials are retrievable", func(ctx context.Context, c vaultpb.VaultClient, _ *cli.Context) (*structpb.Value, error) {
				return c.CredentialsExist(ctx, &emptypb.Empty{})
			}),
		},
	}
}

type vaultCall func(ctx context.Context, c vaultpb.VaultClient, cCtx *cli.Context) (*structpb.Value, error)

func vaultCommand(name, usage string, call vaultCall, flags ...cli.Flag) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: append(append([]cli.Flag{}, senderFlags...), flags...),
		Action: func(cCtx *cli.Context) error {
			tok := cCtx.String(flagToken.Name)
			if tok == "" {
				var err error
				if tok, err = mintToken(cCtx); err != nil {
					return err
				}
			}

			conn, err := dial(cCtx)
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cCtx.Context, cCtx.Duration(flagTimeout.Name))
			defer cancel()
			ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+tok)

			result, err := call(ctx, vaultpb.NewVaultClient(conn), cCtx)
			if err != nil {
				return fmt.Errorf("%s failed: %w", name, err)
			}

			out, err := protojson.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			fmt.Fprintln(cCtx.App.Writer, string(out))
			return nil
		},
	}
}

func mintToken(cCtx *cli.Context) (string, error) {
	secret := cCtx.String(flagTokenSecret.Name)
	if secret == "" {
		return "", fmt.Errorf("--%s is required to mint a sender token", flagTokenSecret.Name)
	}

	surface := model.Surface(cCtx.String(flagSurface.Name))
	switch surface {
	case model.SurfaceUI, model.SurfacePage:
	default:
		return "", fmt.Errorf("unknown surface %q", surface)
	}

	return token.NewJWT(secret, cCtx.Duration(flagTokenTTL.Name)).GenerateSenderToken(model.Sender{
		ExtensionID: cCtx.String(flagExtensionID.Name),
		Surface:     surface,
		URL:         cCtx.String(flagURL.Name),
	})
}

func dial(cCtx *cli.Context) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if cCtx.Bool(flagTLS.Name) {
		creds = credentials.NewClientTLSFromCert(nil, "")
	}

	conn, err := grpc.NewClient(cCtx.String(flagAddr.Name), grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return conn, nil
}
