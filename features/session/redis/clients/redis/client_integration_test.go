package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	clientsredis "github.com/beedev/recommenderv2/features/session/redis/clients/redis"
)

var (
	testRedisClient    *goredis.Client
	testRedisContainer testcontainers.Container
	skipIntegration    bool
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	// Start Redis container once for all tests.
	var containerErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker not available: %v", r)
			}
		}()
		req := testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		}
		testRedisContainer, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()

	if containerErr != nil {
		fmt.Printf("Docker not available, integration tests will be skipped: %v\n", containerErr)
		skipIntegration = true
	} else {
		host, err := testRedisContainer.Host(ctx)
		if err != nil {
			fmt.Printf("Failed to get container host: %v\n", err)
			skipIntegration = true
		} else {
			port, err := testRedisContainer.MappedPort(ctx, "6379")
			if err != nil {
				fmt.Printf("Failed to get container port: %v\n", err)
				skipIntegration = true
			} else {
				testRedisClient = goredis.NewClient(&goredis.Options{
					Addr: host + ":" + port.Port(),
				})
				if err := testRedisClient.Ping(ctx).Err(); err != nil {
					fmt.Printf("Failed to ping redis: %v\n", err)
					skipIntegration = true
				}
			}
		}
	}

	code := m.Run()

	// Cleanup.
	if testRedisClient != nil {
		_ = testRedisClient.Close()
	}
	if testRedisContainer != nil {
		_ = testRedisContainer.Terminate(ctx)
	}

	os.Exit(code)
}

// getClient returns a Client over the shared Redis and flushes the database
// for test isolation. Skips the test if Docker/Redis is not available.
func getClient(t *testing.T) clientsredis.Client {
	t.Helper()
	if skipIntegration {
		t.Skip("Docker not available, skipping integration test")
	}
	require.NoError(t, testRedisClient.FlushDB(context.Background()).Err())
	client, err := clientsredis.New(clientsredis.Options{Redis: testRedisClient})
	require.NoError(t, err)
	return client
}

func TestGetSetDel(t *testing.T) {
	client := getClient(t)
	ctx := context.Background()

	_, err := client.GetBytes(ctx, "session:s-1")
	require.ErrorIs(t, err, clientsredis.ErrNotFound)

	require.NoError(t, client.SetBytes(ctx, "session:s-1", []byte("payload"), time.Minute))
	got, err := client.GetBytes(ctx, "session:s-1")
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)

	require.NoError(t, client.Del(ctx, "session:s-1"))
	_, err = client.GetBytes(ctx, "session:s-1")
	require.ErrorIs(t, err, clientsredis.ErrNotFound)
}

func TestSetBytesResetsTTL(t *testing.T) {
	client := getClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetBytes(ctx, "session:s-1", []byte("a"), 200*time.Millisecond))
	require.NoError(t, client.SetBytes(ctx, "session:s-1", []byte("b"), time.Minute))

	time.Sleep(300 * time.Millisecond)
	got, err := client.GetBytes(ctx, "session:s-1")
	require.NoError(t, err)
	require.Equal(t, []byte("b"), got)
}

func TestSetNXAndCompareAndDel(t *testing.T) {
	client := getClient(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "session:lock:s-1", "token-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, "session:lock:s-1", "token-2", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	// Wrong token leaves the lock in place.
	ok, err = client.CompareAndDel(ctx, "session:lock:s-1", "token-2")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = client.CompareAndDel(ctx, "session:lock:s-1", "token-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, "session:lock:s-1", "token-2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPing(t *testing.T) {
	client := getClient(t)
	require.NoError(t, client.Ping(context.Background()))
	require.Equal(t, "session-redis", client.Name())
}
