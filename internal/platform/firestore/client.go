package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/floorhouse/site/internal/platform/config"
)

const (
	defaultDialTimeout = 10 * time.Second
	envEmulatorHost    = "FIRESTORE_EMULATOR_HOST"
)

// ErrProjectMissing is returned when no project can be determined.
var ErrProjectMissing = errors.New("firestore: project id is required")

// NewClient creates a Firestore client for cfg. When an emulator host is
// configured (in cfg or FIRESTORE_EMULATOR_HOST) the client connects to it
// without authentication.
func NewClient(ctx context.Context, cfg config.FirestoreConfig, opts ...option.ClientOption) (*firestore.Client, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, ErrProjectMissing
	}

	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	clientOpts := append([]option.ClientOption(nil), opts...)
	if host := emulatorHost(cfg); host != "" {
		clientOpts = append(clientOpts,
			option.WithoutAuthentication(),
			option.WithEndpoint(host),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	client, err := firestore.NewClient(dialCtx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: create client: %w", err)
	}
	return client, nil
}

func emulatorHost(cfg config.FirestoreConfig) string {
	if host := strings.TrimSpace(cfg.EmulatorHost); host != "" {
		return host
	}
	return strings.TrimSpace(os.Getenv(envEmulatorHost))
}
