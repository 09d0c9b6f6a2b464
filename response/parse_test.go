// response/parse_test.go
package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseContentTypeHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantType   string
		wantParams map[string]string
	}{
		{
			name:       "Basic",
			header:     "text/html; charset=UTF-8",
			wantType:   "text/html",
			wantParams: map[string]string{"charset": "UTF-8"},
		},
		{
			name:       "No Params",
			header:     "application/json",
			wantType:   "application/json",
			wantParams: map[string]string{},
		},
		{
			name:       "Upper Case",
			header:     "Application/JSON",
			wantType:   "application/json",
			wantParams: map[string]string{},
		},
		{
			name:       "Multiple Params",
			header:     "multipart/form-data; boundary=something; charset=utf-8",
			wantType:   "multipart/form-data",
			wantParams: map[string]string{"boundary": "something", "charset": "utf-8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotParams := ParseContentTypeHeader(tt.header)
			assert.Equal(t, tt.wantType, gotType)
			assert.Equal(t, tt.wantParams, gotParams)
		})
	}
}

func TestParseContentDisposition(t *testing.T) {
	gotType, gotParams := ParseContentDisposition("attachment; filename=\"avatar.png\"")

	assert.Equal(t, "attachment", gotType)
	assert.Equal(t, map[string]string{"filename": "avatar.png"}, gotParams)
}

func TestMediaTypeMatchers(t *testing.T) {
	assert.True(t, isJSONMediaType("application/json"))
	assert.True(t, isJSONMediaType("application/problem+json"))
	assert.False(t, isJSONMediaType("text/plain"))
	assert.True(t, isXMLMediaType("text/xml"))
	assert.True(t, isXMLMediaType("application/atom+xml"))
	assert.False(t, isXMLMediaType("application/json"))
}
