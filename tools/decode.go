package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Decode unmarshals tool input into v. Input that is not valid JSON gets a
// second chance through json-repair (trailing commas, single quotes,
// unclosed brackets) and a third as Hjson.
func Decode(input []byte, v interface{}) error {
	if len(input) == 0 {
		input = []byte("{}")
	}
	err := json.Unmarshal(input, v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return fmt.Errorf("invalid input: %w", err)
	}

	if repaired, rerr := jsonrepair.RepairJSON(string(input)); rerr == nil {
		if json.Unmarshal([]byte(repaired), v) == nil {
			return nil
		}
	}
	if converted, herr := HJSONToJSON(input); herr == nil {
		if json.Unmarshal(converted, v) == nil {
			return nil
		}
	}
	return fmt.Errorf("invalid input: %w", err)
}

// HJSONToJSON converts an Hjson document to plain JSON.
func HJSONToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := hjson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}
