package upload

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/smartschool"
	"smsc-client/lib/testutil"

	"github.com/stretchr/testify/require"
)

func login(t testing.TB, platform *testutil.Platform) *smartschool.Session {
	t.Helper()
	session, err := smartschool.LoginWithOptions(context.Background(), smartschool.LoginOptions{
		BaseUrl:   platform.URL(),
		Username:  testutil.Username,
		Password:  testutil.Password,
		Telemetry: &telemetry.Recorder{},
	})
	require.NoError(t, err)
	return session
}

func TestNormalizeFileName(t *testing.T) {
	cases := []struct {
		name     string
		expected string
		invalid  bool
	}{
		{name: "verslag.docx", expected: "verslag.docx"},
		{name: "/home/leerling/verslag.docx", expected: "verslag.docx"},
		{name: `C:\Users\leerling\taak 1.pdf`, expected: "taak 1.pdf"},
		{name: `what?<is>"this"|*.txt`, expected: "what__is__this___.txt"},
		{name: "notes:old.txt", invalid: true},
		{name: ".hidden", invalid: true},
		{name: "trailing.", invalid: true},
		{name: "dir/", invalid: true},
		{name: "", invalid: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := NormalizeFileName(c.name)
			if c.invalid {
				require.ErrorIs(t, err, ErrInvalidFileName)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.expected, out)
		})
	}
}

func TestGetUploadDirectory(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)
	platform.Api("GET /upload/api/v1/get-upload-directory", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJson(w, http.StatusOK, `{"uploadDir":"upload_8f2c1d"}`)
	})
	session := login(t, platform)

	dir, err := GetUploadDirectory(context.Background(), session)
	require.NoError(t, err)
	require.Equal(t, Directory("upload_8f2c1d"), dir)
}

func TestGetUploadDirectoryMissing(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)
	platform.Api("GET /upload/api/v1/get-upload-directory", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJson(w, http.StatusOK, `{}`)
	})
	session := login(t, platform)

	_, err := GetUploadDirectory(context.Background(), session)
	var decodeErr *smartschool.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestUploadFile(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)

	type received struct {
		dir      string
		name     string
		contents string
	}
	var got received
	platform.Api("POST /Upload/Upload/Index", func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(1 << 20)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		contents, _ := io.ReadAll(file)
		got = received{
			dir:      r.FormValue("uploadDir"),
			name:     header.Filename,
			contents: string(contents),
		}
		testutil.WriteJson(w, http.StatusOK, `{"success":true}`)
	})
	session := login(t, platform)

	name, err := UploadFile(
		context.Background(),
		session,
		"upload_8f2c1d",
		"/tmp/taak?.txt",
		strings.NewReader("hello world"),
	)
	require.NoError(t, err)
	require.Equal(t, "taak_.txt", name)
	require.Equal(t, received{dir: "upload_8f2c1d", name: "taak_.txt", contents: "hello world"}, got)
}

func TestUploadFileInvalidName(t *testing.T) {
	platform := testutil.NewPlatform(t, testutil.PlatformNormal)
	called := false
	platform.Api("POST /Upload/Upload/Index", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	session := login(t, platform)

	_, err := UploadFile(context.Background(), session, "upload_8f2c1d", "a:b.txt", strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidFileName)
	require.False(t, called)
}
