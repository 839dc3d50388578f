package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStoreMetrics_Counts_Requests(t *testing.T) {
	req := require.New(t)
	metrics := NewStoreMetrics()
	interceptor := metrics.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/garden.ObjectStore/Put"}

	ok := func(context.Context, any) (any, error) { return nil, nil }
	denied := func(context.Context, any) (any, error) {
		return nil, status.Error(codes.PermissionDenied, "nope")
	}

	_, _ = interceptor(context.Background(), nil, info, ok)
	_, _ = interceptor(context.Background(), nil, info, ok)
	_, _ = interceptor(context.Background(), nil, info, denied)

	req.Equal(2.0, testutil.ToFloat64(metrics.Requests(info.FullMethod, codes.OK.String())))
	req.Equal(1.0, testutil.ToFloat64(metrics.Requests(info.FullMethod, codes.PermissionDenied.String())))

	metrics.WatchStarted()
	metrics.WatchStarted()
	metrics.WatchEnded()
	req.Equal(1.0, testutil.ToFloat64(metrics.watchers))

	metrics.ObjectWritten("put")
	req.Equal(1.0, testutil.ToFloat64(metrics.objects.WithLabelValues("put")))

	families, err := metrics.Registry.Gather()
	req.NoError(err)
	req.NotEmpty(families)
}
