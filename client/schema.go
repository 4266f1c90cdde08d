package client

import (
	"encoding/json"

	"github.com/Netcracker/qubership-code-review-agent/view"
	"github.com/invopop/jsonschema"
)

type OutputSchema struct {
	Name        string
	Description string
	Schema      interface{}
}

func (s OutputSchema) JSON() (string, error) {
	data, err := json.MarshalIndent(s.Schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var ReviewResultSchema = OutputSchema{
	Name:        "code_review_result",
	Description: "Structured code review: overall rating, issues, positive aspects and summary",
	Schema:      GenerateSchema[view.ReviewResult](),
}

var ReviewInputSchema = GenerateSchema[view.ReviewInput]()

func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}
