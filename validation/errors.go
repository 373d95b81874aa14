package validation

import (
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pitabwire/polyglot/localization"
)

// HTTPErrorBody is the JSON document written for a failed request.
type HTTPErrorBody struct {
	StatusCode int                       `json:"statusCode"`
	Message    string                    `json:"message"`
	Errors     []*localization.ErrorNode `json:"errors,omitempty"`
}

// DetailsToStruct converts error nodes into a protobuf list usable as an error detail.
func DetailsToStruct(nodes []*localization.ErrorNode) (*structpb.ListValue, error) {
	return structpb.NewList(nodesToList(nodes))
}

func nodesToList(nodes []*localization.ErrorNode) []any {
	list := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		constraints := make(map[string]any, len(n.Constraints))
		for k, v := range n.Constraints {
			constraints[k] = v
		}
		list = append(list, map[string]any{
			"property":    n.Property,
			"children":    nodesToList(n.Children),
			"constraints": constraints,
		})
	}
	return list
}

// ToGrpcError translates validation errors into gRPC status errors.
//
// Mapping:
//   - ValidationException → codes.InvalidArgument with the details attached
//   - ErrUnsupportedKind / ErrContextUnavailable → codes.Internal
//   - everything else is returned untouched
func ToGrpcError(err error) error {
	if err == nil {
		return nil
	}

	var exc *localization.ValidationException
	if errors.As(err, &exc) {
		st := status.New(codes.InvalidArgument, exc.Error())
		if details, detailErr := DetailsToStruct(exc.Details); detailErr == nil {
			if withDetails, attachErr := st.WithDetails(details); attachErr == nil {
				st = withDetails
			}
		}
		return st.Err()
	}

	if errors.Is(err, localization.ErrUnsupportedKind) || errors.Is(err, localization.ErrContextUnavailable) {
		return status.Error(codes.Internal, err.Error())
	}

	return err
}

// ToConnectError translates validation errors into ConnectRPC errors.
//
// Mapping:
//   - ValidationException → CodeInvalidArgument with the details attached
//   - ErrUnsupportedKind / ErrContextUnavailable → CodeInternal
//   - everything else is returned untouched
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}

	var exc *localization.ValidationException
	if errors.As(err, &exc) {
		connectErr := connect.NewError(connect.CodeInvalidArgument, exc)
		if details, detailErr := DetailsToStruct(exc.Details); detailErr == nil {
			if detail, attachErr := connect.NewErrorDetail(details); attachErr == nil {
				connectErr.AddDetail(detail)
			}
		}
		return connectErr
	}

	if errors.Is(err, localization.ErrUnsupportedKind) || errors.Is(err, localization.ErrContextUnavailable) {
		return connect.NewError(connect.CodeInternal, err)
	}

	return err
}

// ToHTTPStatusCode translates validation errors into HTTP status codes.
//
// Mapping:
//   - ValidationException → 400 Bad Request
//   - everything else → 500 Internal Server Error
func ToHTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if errors.Is(err, localization.ErrValidation) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// NewHTTPErrorBody builds the response document for err.
func NewHTTPErrorBody(err error) HTTPErrorBody {
	code := ToHTTPStatusCode(err)
	body := HTTPErrorBody{StatusCode: code, Message: http.StatusText(code)}

	var exc *localization.ValidationException
	if errors.As(err, &exc) {
		body.Message = exc.Error()
		body.Errors = exc.Details
	}
	return body
}

// WriteHTTPError writes err as a JSON document. Validation details are
// translated with the localization context attached to r when one is available.
func WriteHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	err = TranslateError(r.Context(), localization.NewHTTPEnvelope(r.Context(), nil), err)

	body := NewHTTPErrorBody(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.StatusCode)
	_ = json.NewEncoder(w).Encode(body)
}
