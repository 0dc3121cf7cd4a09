package mongo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tulu-service/internal/domain"
)

func TestHistoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	uri, cleanup := startMongo(t, ctx)
	defer cleanup()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	store := NewHistoryStore(client.Database("tulu_test"))
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	base := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		err := store.Append(ctx, domain.ChatExchange{
			ID:        fmt.Sprintf("ex-%d", i),
			SessionID: "sess-1",
			Question:  fmt.Sprintf("q%d", i),
			Answer:    fmt.Sprintf("a%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := store.Recent(ctx, "sess-1", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "ex-2" || got[1].ID != "ex-3" {
		t.Fatalf("expected last two exchanges oldest first, got %+v", got)
	}
	if other, _ := store.Recent(ctx, "sess-2", 10); len(other) != 0 {
		t.Fatalf("expected no exchanges for another session")
	}
}

func startMongo(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
	req := tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start mongo: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("mongo host: %v", err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		t.Fatalf("mongo port: %v", err)
	}
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port()), func() {
		_ = container.Terminate(ctx)
	}
}
