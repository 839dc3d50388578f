package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrObjectNotFound = fmt.Errorf("object not found")
	ErrNotOwner       = fmt.Errorf("object belongs to another actor")
	ErrEmptyValue     = fmt.Errorf("object value is empty")
	ErrInvalidSchema  = fmt.Errorf("invalid discover schema")
	ErrNoSession      = fmt.Errorf("a session is required")

	ErrCommunityNotFound    = fmt.Errorf("community not found")
	ErrCommunityExists      = fmt.Errorf("a community with this id already exists")
	ErrInvalidCommunityName = fmt.Errorf("invalid community name")
	ErrReservedCommunity    = fmt.Errorf("community id is reserved")
	ErrDefaultCommunity     = fmt.Errorf("the default community cannot be left or deleted")
	ErrNotCreator           = fmt.Errorf("only the creator can delete a community")

	ErrEmptyContent   = fmt.Errorf("message content is empty")
	ErrNoChannel      = fmt.Errorf("no channel selected")
	ErrMessageUnknown = fmt.Errorf("message not in timeline")
	ErrNotEditing     = fmt.Errorf("no message is being edited")

	ErrBlankTag = fmt.Errorf("tag is blank")

	ErrInvalidProfile = fmt.Errorf("invalid profile")
	ErrNotAnImage     = fmt.Errorf("file is not an image")

	ErrUserAlreadyExists  = fmt.Errorf("actor already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

var grpcCodes = []struct {
	err  error
	code codes.Code
}{
	{ErrObjectNotFound, codes.NotFound},
	{ErrNotOwner, codes.PermissionDenied},
	{ErrEmptyValue, codes.InvalidArgument},
	{ErrInvalidSchema, codes.InvalidArgument},
	{ErrNoSession, codes.Unauthenticated},
	{ErrUserAlreadyExists, codes.AlreadyExists},
	{ErrInvalidCredentials, codes.Unauthenticated},
	{ErrInvalidPassword, codes.InvalidArgument},
	{ErrTokenGeneration, codes.Internal},
}

// MapToGRPCError converts a domain error into a gRPC status error.
// The sentinel message travels as the status message so FromGRPCError can restore it.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, c := range grpcCodes {
		if stderrors.Is(err, c.err) {
			return status.Error(c.code, c.err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// FromGRPCError restores the sentinel error carried by a status, if any.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, c := range grpcCodes {
		if st.Code() == c.code && st.Message() == c.err.Error() {
			return c.err
		}
	}
	return err
}
