package extract

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// contractJSON is the strict output contract for extraction completions.
// Component keys are closed to the six wire names; confidence values are
// bounded to [0, 1]; a clarification question is required exactly when
// needs_clarification is set.
const contractJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["updates", "needs_clarification", "direct_product_mentions", "confidence"],
  "additionalProperties": false,
  "properties": {
    "updates": {
      "type": "object",
      "propertyNames": {
        "enum": ["power_source", "feeder", "cooler", "interconnector", "torch", "accessories"]
      },
      "additionalProperties": {
        "type": "object",
        "additionalProperties": {"type": "string", "minLength": 1}
      }
    },
    "needs_clarification": {"type": "boolean"},
    "clarification_question": {"type": "string"},
    "direct_product_mentions": {
      "type": "object",
      "propertyNames": {
        "enum": ["power_source", "feeder", "cooler", "interconnector", "torch", "accessories"]
      },
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "confidence": {
      "type": "object",
      "propertyNames": {
        "enum": ["power_source", "feeder", "cooler", "interconnector", "torch", "accessories"]
      },
      "additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
    },
    "reasoning": {"type": "string"}
  },
  "if": {
    "properties": {"needs_clarification": {"const": true}},
    "required": ["needs_clarification"]
  },
  "then": {
    "required": ["clarification_question"],
    "properties": {"clarification_question": {"minLength": 1}}
  },
  "else": {
    "properties": {"clarification_question": {"maxLength": 0}}
  }
}`

// contract is the compiled output contract, built once at package init.
var contract = mustCompileContract()

func mustCompileContract() *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(contractJSON), &doc); err != nil {
		panic(fmt.Sprintf("extract: contract schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("contract.json", doc); err != nil {
		panic(fmt.Sprintf("extract: contract schema: %v", err))
	}
	schema, err := c.Compile("contract.json")
	if err != nil {
		panic(fmt.Sprintf("extract: contract schema: %v", err))
	}
	return schema
}
