package smartschool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/itchyny/gojq"
)

const (
	DefaultEnvelopeErrorQuery = `select(type == "object" and .success == false) | {` +
		`code: ((.code // .errorCode // "") | tostring), ` +
		`message: ((.error // .message // .msg // "") | if type == "string" then . else tojson end)` +
		`}`
	DefaultEnvelopePayloadQuery = `select(type == "object" and .success == true and has("data")) | .data`
)

// EnvelopeMatcher recognizes the 2xx envelope some endpoints wrap their
// result in. Both queries are jq expressions run against the decoded body.
//
//   - ErrorQuery yields an object `{code, message}` when the body is an
//     application error, and nothing otherwise.
//   - PayloadQuery yields the wrapped payload when the body is a success
//     envelope, and nothing when the body is a bare payload.
//
// Blank queries take the defaults.
type EnvelopeMatcher struct {
	ErrorQuery   string `json:"error_query"`
	PayloadQuery string `json:"payload_query"`
}

type envelope struct {
	errorCode   *gojq.Code
	payloadCode *gojq.Code
}

func compileQuery(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

func (m EnvelopeMatcher) compile() (envelope, error) {
	errorQuery := m.ErrorQuery
	if errorQuery == "" {
		errorQuery = DefaultEnvelopeErrorQuery
	}
	payloadQuery := m.PayloadQuery
	if payloadQuery == "" {
		payloadQuery = DefaultEnvelopePayloadQuery
	}

	errorCode, err := compileQuery(errorQuery)
	if err != nil {
		return envelope{}, fmt.Errorf("envelope error query: %w", err)
	}
	payloadCode, err := compileQuery(payloadQuery)
	if err != nil {
		return envelope{}, fmt.Errorf("envelope payload query: %w", err)
	}
	return envelope{errorCode: errorCode, payloadCode: payloadCode}, nil
}

// first returns the first non-error value yielded by code.
func first(code *gojq.Code, input any) (any, bool) {
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return nil, false
		}
		if _, isErr := v.(error); isErr {
			continue
		}
		return v, true
	}
}

type envelopeError struct {
	Code    string
	Message string
}

// inspect returns the body to decode, or the application error the envelope
// carries. Bodies that aren't json are returned unchanged so decoding
// reports them.
func (e envelope) inspect(body []byte) ([]byte, *envelopeError, error) {
	input, ok := decodeJson(body)
	if !ok {
		return body, nil, nil
	}

	v, ok := first(e.errorCode, input)
	if ok {
		out := &envelopeError{}
		fields, isObject := v.(map[string]any)
		if isObject {
			out.Code = stringField(fields, "code")
			out.Message = stringField(fields, "message")
		} else {
			out.Message = fmt.Sprint(v)
		}
		return nil, out, nil
	}

	v, ok = first(e.payloadCode, input)
	if !ok {
		return body, nil, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return payload, nil, nil
}

// decodeJson decodes a single json value keeping numbers as json.Number, so
// integers wider than a float64 survive re-marshalling.
func decodeJson(body []byte) (any, bool) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var out any
	err := decoder.Decode(&out)
	if err != nil {
		return nil, false
	}
	_, err = decoder.Token()
	if err != io.EOF {
		return nil, false
	}
	return out, true
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
