// Package mcpserver exposes the script assistant over StreamableHTTP MCP.
// The server owns one workflow controller, matching the product's
// single-user session model; remote UIs drive it through the tools.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mark3labs/mcp-go/server"

	"github.com/thuanndbxvp/Thai-news/internal/keys"
	"github.com/thuanndbxvp/Thai-news/internal/library"
	"github.com/thuanndbxvp/Thai-news/internal/provider"
	"github.com/thuanndbxvp/Thai-news/internal/workflow"
)

// Config holds server configuration.
type Config struct {
	Port         int
	DataDir      string
	TableName    string // when set, the library lives in DynamoDB
	S3Bucket     string // when set, exported scripts are pushed to S3
	CDNBaseURL   string
	AWSRegion    string
	SecretPrefix string // e.g. "/thainews/mcp/"
}

// DefaultConfig returns a Config populated from environment variables.
func DefaultConfig() Config {
	return Config{
		Port:         8000,
		DataDir:      envOr("THAINEWS_DATA_DIR", "/var/lib/thainews"),
		TableName:    envOr("DYNAMODB_TABLE", ""),
		S3Bucket:     envOr("S3_BUCKET", ""),
		CDNBaseURL:   envOr("CDN_BASE_URL", ""),
		AWSRegion:    envOr("AWS_REGION", "us-east-1"),
		SecretPrefix: envOr("SECRET_PREFIX", "/thainews/mcp/"),
	}
}

// Server is the MCP server for the script assistant.
type Server struct {
	cfg      Config
	mcp      *server.MCPServer
	handlers *Handlers
	log      *slog.Logger
}

// New creates and configures the MCP server.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	keyStore, err := keys.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}

	var lib library.Store
	var storage *library.Storage

	if cfg.TableName != "" || cfg.S3Bucket != "" || cfg.SecretPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		if cfg.SecretPrefix != "" {
			keys.SeedFromSecrets(ctx, awsCfg, cfg.SecretPrefix, keyStore, logger)
		}
		if cfg.TableName != "" {
			lib = library.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.TableName)
		}
		if cfg.S3Bucket != "" {
			storage = library.NewStorage(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.CDNBaseURL)
		}
	}
	if lib == nil {
		fileLib, err := library.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open library: %w", err)
		}
		lib = fileLib
	}

	gateway := provider.NewGateway(keyStore)
	ctrl := workflow.New(gateway)

	handlers := NewHandlers(ctrl, keyStore, keys.NewValidator(), lib, storage, logger)

	mcpServer := server.NewMCPServer(
		"thainews",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	handlers.Register(mcpServer)

	return &Server{
		cfg:      cfg,
		mcp:      mcpServer,
		handlers: handlers,
		log:      logger,
	}, nil
}

// Start runs the HTTP MCP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info("Starting MCP server", "addr", addr)

	httpServer := server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)
	return httpServer.Start(addr)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
