// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

package authclient

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
)

// LoginRequest is the body of the login call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	Token string `json:"token" jsonschema:"minLength=1"`
}

const responseSchemaID = "https://quizrush.dev/schemas/login-response.schema.json"

var (
	responseSchemaOnce sync.Once
	responseSchema     *jschema.Schema
	errResponseSchema  error
)

// ResponseSchema returns the JSON Schema that login responses must satisfy.
func ResponseSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&LoginResponse{})
	schema.ID = jsonschema.ID(responseSchemaID)
	schema.Title = "QuizRush Login Response"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.With("operation", "marshal response schema").Wrap(err)
	}
	return data, nil
}

func compiledResponseSchema() (*jschema.Schema, error) {
	responseSchemaOnce.Do(func() {
		data, err := ResponseSchema()
		if err != nil {
			errResponseSchema = err
			return
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			errResponseSchema = oops.With("operation", "parse response schema").Wrap(err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource(responseSchemaID, doc); err != nil {
			errResponseSchema = oops.With("operation", "add response schema").Wrap(err)
			return
		}
		responseSchema, errResponseSchema = c.Compile(responseSchemaID)
	})
	return responseSchema, errResponseSchema
}

// decodeResponse validates body against the response schema and decodes it.
func decodeResponse(body []byte) (LoginResponse, error) {
	sch, err := compiledResponseSchema()
	if err != nil {
		return LoginResponse{}, err
	}

	inst, err := jschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return LoginResponse{}, oops.With("operation", "parse response body").Wrap(err)
	}
	if err := sch.Validate(inst); err != nil {
		return LoginResponse{}, oops.With("operation", "validate response body").Wrap(err)
	}

	var resp LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return LoginResponse{}, oops.With("operation", "decode response body").Wrap(err)
	}
	return resp, nil
}
