package interceptors

import (
	"context"

	"github.com/snisarenko-labs/ipcensus/internal/ctxmeta"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const requestIDHeader = "x-request-id"

func UnaryRequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var rid string

		// take request id from incoming metadata if the caller set one
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDHeader); len(vals) > 0 && vals[0] != "" {
				rid = vals[0]
			}
		}

		if rid == "" {
			rid = uuid.NewString()
		}

		ctx = ctxmeta.WithRequestID(ctx, rid)

		// echo it back so the client can correlate logs on both sides
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, rid))

		return handler(ctx, req)
	}
}
