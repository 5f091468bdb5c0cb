package smartschool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelopeInspect(t *testing.T) {
	env, err := EnvelopeMatcher{}.compile()
	require.NoError(t, err)

	type testCase struct {
		name    string
		body    string
		payload string
		appErr  *envelopeError
	}
	cases := []testCase{
		{name: "bare object", body: `{"name":"a"}`, payload: `{"name":"a"}`},
		{name: "bare array", body: `[1,2]`, payload: `[1,2]`},
		{name: "not json", body: `<html>`, payload: `<html>`},
		{name: "success without data", body: `{"success":true}`, payload: `{"success":true}`},
		{name: "success with data", body: `{"success":true,"data":{"id":"x"}}`, payload: `{"id":"x"}`},
		{name: "success with null data", body: `{"success":true,"data":null}`, payload: `null`},
		{name: "error string", body: `{"success":false,"error":"X"}`, appErr: &envelopeError{Message: "X"}},
		{name: "error with code", body: `{"success":false,"errorCode":"E12","msg":"locked"}`, appErr: &envelopeError{Code: "E12", Message: "locked"}},
		{name: "error without message", body: `{"success":false}`, appErr: &envelopeError{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, appErr, err := env.inspect([]byte(tc.body))
			require.NoError(t, err)
			if tc.appErr != nil {
				require.Equal(t, tc.appErr, appErr)
				require.Nil(t, payload)
				return
			}
			require.Nil(t, appErr)
			require.Equal(t, tc.payload, string(payload))
		})
	}
}

func TestEnvelopeCustomQueries(t *testing.T) {
	env, err := EnvelopeMatcher{
		ErrorQuery:   `select(.status == "error") | {code: .status, message: .reason}`,
		PayloadQuery: `select(.status == "ok") | .result`,
	}.compile()
	require.NoError(t, err)

	payload, appErr, err := env.inspect([]byte(`{"status":"ok","result":[1]}`))
	require.NoError(t, err)
	require.Nil(t, appErr)
	require.Equal(t, `[1]`, string(payload))

	_, appErr, err = env.inspect([]byte(`{"status":"error","reason":"quota"}`))
	require.NoError(t, err)
	require.Equal(t, &envelopeError{Code: "error", Message: "quota"}, appErr)

	// queries that fail at runtime are treated as not matching
	payload, appErr, err = env.inspect([]byte(`[1,2]`))
	require.NoError(t, err)
	require.Nil(t, appErr)
	require.Equal(t, `[1,2]`, string(payload))
}

func TestEnvelopeInvalidQuery(t *testing.T) {
	_, err := EnvelopeMatcher{ErrorQuery: "select(("}.compile()
	require.Error(t, err)
}

func TestEnvelopeKeepsLargeIntegers(t *testing.T) {
	env, err := EnvelopeMatcher{}.compile()
	require.NoError(t, err)

	payload, appErr, err := env.inspect([]byte(`{"success":true,"data":{"id":9007199254740993,"size":1.5}}`))
	require.NoError(t, err)
	require.Nil(t, appErr)

	var out struct {
		Id   int64   `json:"id"`
		Size float64 `json:"size"`
	}
	require.NoError(t, json.Unmarshal(payload, &out))
	require.Equal(t, int64(9007199254740993), out.Id)
	require.Equal(t, 1.5, out.Size)
}

func TestEnvelopeTrailingGarbage(t *testing.T) {
	env, err := EnvelopeMatcher{}.compile()
	require.NoError(t, err)

	body := []byte(`{"success":false,"error":"X"} trailing`)
	payload, appErr, err := env.inspect(body)
	require.NoError(t, err)
	require.Nil(t, appErr)
	require.Equal(t, body, payload)
}
