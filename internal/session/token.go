// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/samber/oops"
)

// UserIDClaim is the payload field holding the subject identifier.
const UserIDClaim = "userId"

// Payload is the decoded middle segment of a session token.
type Payload struct {
	UserID string
	Claims map[string]any
}

// DecodeToken extracts the payload of a session token without verifying it.
// The token's signature belongs to the server; the client only reads the
// userId it carries. Failures wrap ErrTokenDecode and carry the failing stage.
func DecodeToken(token string) (Payload, error) {
	segments := strings.Split(token, ".")
	if len(segments) < 2 {
		return Payload{}, decodeError(StageSplit, fmt.Errorf("expected at least 2 segments, got %d", len(segments)))
	}

	raw, err := jwt.DecodeSegment(strings.TrimRight(segments[1], "="))
	if err != nil {
		return Payload{}, decodeError(StageDecode, err)
	}

	claims := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return Payload{}, decodeError(StageParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Payload{}, decodeError(StageParse, errors.New("trailing data after payload object"))
	}

	userID, err := claimString(claims[UserIDClaim])
	if err != nil {
		return Payload{}, decodeError(StageClaim, err)
	}

	return Payload{UserID: userID, Claims: claims}, nil
}

// claimString renders a scalar claim the way it is shown to the rest of the
// application: integers without exponent or fraction, strings verbatim.
func claimString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", fmt.Errorf("%s claim is missing", UserIDClaim)
	case string:
		return val, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		f, err := val.Float64()
		if err != nil {
			return "", fmt.Errorf("%s claim %q is not a number: %w", UserIDClaim, val.String(), err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("%s claim has unsupported type %T", UserIDClaim, v)
	}
}

func decodeError(stage string, cause error) error {
	return oops.Code(CodeTokenDecodeFailed).
		With("stage", stage).
		Wrap(fmt.Errorf("%w: %w", ErrTokenDecode, cause))
}
