package smartschool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"smsc-client/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	report_call_classify = "call.classify"
	report_call_envelope = "call.envelope"
	report_call_decode   = "call.decode"
	report_session_jar   = "session.jar"
)

// NoContent is the result type of calls whose body is not needed.
type NoContent struct{}

type MultipartFile struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Multipart is a payload sent as multipart/form-data.
type Multipart struct {
	Fields map[string]string
	Files  []MultipartFile
}

// Call performs an authenticated request against path (relative to the
// session's base url) and decodes the response into T.
//
// The payload is sent according to its type:
//   - nil: no body
//   - url.Values: query parameters for GET, a form body otherwise
//   - Multipart: a multipart/form-data body
//   - anything else: a json body
//
// Cookies set by the response are stored in the session before the
// response is classified. A 2xx body is first checked for an application
// error envelope, a success envelope is unwrapped before decoding.
func Call[T any](ctx context.Context, s *Session, method, path string, payload any) (T, error) {
	var out T

	res, err := s.send(ctx, method, path, payload, false)
	if err != nil {
		return out, err
	}
	raw := res.Body()
	err = s.classify(path, res, raw)
	if err != nil {
		return out, err
	}

	body, appErr, err := s.envelope.inspect(raw)
	if err != nil {
		s.tel.ReportBroken(report_call_envelope, path, err)
		return out, &DecodeError{Path: path, Err: err, Body: raw}
	}
	if appErr != nil {
		return out, &ApiError{
			Kind:    ApplicationError,
			Path:    path,
			Status:  res.StatusCode(),
			Code:    appErr.Code,
			Message: appErr.Message,
			Body:    raw,
		}
	}

	if _, ignored := any(&out).(*NoContent); ignored {
		return out, nil
	}
	err = json.Unmarshal(body, &out)
	if err != nil {
		s.tel.ReportBroken(report_call_decode, path, err)
		return out, &DecodeError{Path: path, Err: err, Body: raw}
	}
	return out, nil
}

// Exec is Call for requests whose response body is not needed, the response
// is still classified and checked for an application error.
func Exec(ctx context.Context, s *Session, method, path string, payload any) error {
	_, err := Call[NoContent](ctx, s, method, path, payload)
	return err
}

// Stream performs an authenticated GET and returns the unread response body,
// the caller must close it. Non 2xx responses are classified like Call.
func Stream(ctx context.Context, s *Session, path string) (io.ReadCloser, error) {
	res, err := s.send(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	telemetry.FinishResponse(res.Request.Context(), res)

	body := res.RawBody()
	if res.IsSuccess() {
		return body, nil
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &TransportError{Op: http.MethodGet, Url: path, Status: res.StatusCode(), Err: err}
	}
	err = s.classify(path, res, raw)
	if err == nil {
		err = &ApiError{Kind: Unexpected, Path: path, Status: res.StatusCode(), Body: raw}
	}
	return nil, err
}

func (s *Session) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, &ProtocolError{Kind: InvalidPath, Detail: path, Err: err}
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, &ProtocolError{Kind: InvalidPath, Detail: fmt.Sprintf("%s is not relative to the base url", path)}
	}
	target := s.baseUrl.JoinPath(ref.EscapedPath())
	// JoinPath keeps a base url without a path relative
	if !strings.HasPrefix(target.Path, "/") {
		target.Path = "/" + target.Path
		if target.RawPath != "" {
			target.RawPath = "/" + target.RawPath
		}
	}
	target.RawQuery = ref.RawQuery
	return target, nil
}

// send builds and sends a request, it stores the cookies of the response in
// the session jar.
func (s *Session) send(ctx context.Context, method, path string, payload any, stream bool) (*resty.Response, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	req := s.http.R().
		SetContext(ctx).
		SetCookies(s.jar.Cookies(target))
	if stream {
		req.SetDoNotParseResponse(true)
	} else {
		req.SetHeader("accept", "application/json")
	}

	switch p := payload.(type) {
	case nil:
	case url.Values:
		if method == http.MethodGet {
			req.SetQueryParamsFromValues(p)
		} else {
			req.SetFormDataFromValues(p)
		}
	case Multipart:
		req.SetMultipartFormData(p.Fields)
		for _, f := range p.Files {
			req.SetFileReader(f.Field, f.Name, f.Reader)
		}
	case *Multipart:
		req.SetMultipartFormData(p.Fields)
		for _, f := range p.Files {
			req.SetFileReader(f.Field, f.Name, f.Reader)
		}
	default:
		req.SetHeader("content-type", "application/json").SetBody(payload)
	}

	res, err := req.Execute(method, target.String())
	if err != nil {
		return nil, &TransportError{Op: method, Url: path, Err: err}
	}

	cookies := res.Cookies()
	if len(cookies) > 0 {
		s.jar.SetCookies(target, cookies)
		s.tel.ReportCount(report_session_jar, int64(s.jar.Len()))
	}
	return res, nil
}

// classify maps a non 2xx response to an error. Bodies of errors are never
// decoded.
func (s *Session) classify(path string, res *resty.Response, body []byte) error {
	status := res.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		s.tel.ReportWarning(report_call_classify, path, status)
		return &AuthError{Kind: SessionExpired, Message: fmt.Sprintf("%s returned %d", path, status)}
	case status >= 300 && status < 400 && redirectsToLogin(res.RawResponse, s.baseUrl, s.matchers):
		s.tel.ReportWarning(report_call_classify, path, status)
		return &AuthError{Kind: SessionExpired, Message: fmt.Sprintf("%s redirected to the login form", path)}
	case status == http.StatusNotFound:
		return &ApiError{Kind: NotFound, Path: path, Status: status, Body: body}
	default:
		return &ApiError{Kind: Unexpected, Path: path, Status: status, Body: body}
	}
}
