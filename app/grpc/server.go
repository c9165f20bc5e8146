package grpc

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-apikeys/app/dto"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type APIKeyServer struct {
	validationService service.ValidationService
}

func NewAPIKeyServer(validationService service.ValidationService) *APIKeyServer {
	return &APIKeyServer{validationService: validationService}
}

// Validate reports invalid keys in the response body, never as an error status.
func (s *APIKeyServer) Validate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	result := s.validationService.Validate(ctx, req.GetValue())
	if !result.Valid {
		logrus.WithField("reason", result.Reason).Debug("Validate rejected api key (grpc)")
	}

	return validationStruct(result)
}

func (s *APIKeyServer) Access(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	keyID, ok := APIKeyIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthorized")
	}

	logrus.WithField("api_key_id", keyID).Debug("Access granted (grpc)")
	return validationStruct(&dto.ValidationResult{Valid: true, KeyID: keyID})
}

func validationStruct(result *dto.ValidationResult) (*structpb.Struct, error) {
	fields := map[string]any{
		"valid":   result.Valid,
		"message": result.Message(),
	}
	if result.Reason != "" {
		fields["reason"] = result.Reason
	}

	res, err := structpb.NewStruct(fields)
	if err != nil {
		logrus.WithError(err).Error("Failed to build validation response (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return res, nil
}
