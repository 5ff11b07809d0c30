package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/loginvault/internal/model"
)

func handleError(err error) error {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Error())
	case errors.Is(err, model.ErrUnknownMessage):
		return status.Error(codes.Unimplemented, "unknown message type")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
