package smartschool

import (
	"context"
	"testing"

	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/testutil"

	"github.com/stretchr/testify/require"
)

func login(t testing.TB, platform *testutil.Platform) *Session {
	t.Helper()
	session, err := LoginWithOptions(context.Background(), LoginOptions{
		BaseUrl:   platform.URL(),
		Username:  testutil.Username,
		Password:  testutil.Password,
		Telemetry: &telemetry.Recorder{},
	})
	require.NoError(t, err)
	return session
}
