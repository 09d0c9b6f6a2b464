// version_test.go
package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUserAgentHeader(t *testing.T) {
	userAgent := GetUserAgentHeader()

	assert.True(t, strings.HasPrefix(userAgent, "go-api-user-client/"), "User-Agent should start with the library name")
	assert.Equal(t, GetVersion(), strings.TrimPrefix(userAgent, GetAppName()+"/"))
}
