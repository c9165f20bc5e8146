package grpc

import (
	"context"
	"strings"

	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type apiKeyIDKey struct{}

// APIKeyUnaryInterceptor requires a valid x-api-key for the listed full methods.
// With no methods listed every call is guarded.
func APIKeyUnaryInterceptor(validationService service.ValidationService, fullMethods ...string) gogrpc.UnaryServerInterceptor {
	guarded := make(map[string]struct{}, len(fullMethods))
	for _, method := range fullMethods {
		guarded[method] = struct{}{}
	}

	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		if len(guarded) > 0 {
			if _, ok := guarded[info.FullMethod]; !ok {
				return handler(ctx, req)
			}
		}

		result := validationService.Validate(ctx, incomingAPIKeyFromMetadata(ctx))
		if !result.Valid {
			if result.Reason == dto.ReasonValidationFailed {
				return nil, status.Error(codes.Internal, "internal server error")
			}
			return nil, status.Error(codes.Unauthenticated, "unauthorized")
		}

		return handler(context.WithValue(ctx, apiKeyIDKey{}, result.KeyID), req)
	}
}

func APIKeyIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(apiKeyIDKey{}).(string)
	return id, ok && id != ""
}

func incomingAPIKeyFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
