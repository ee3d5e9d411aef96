package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFrames(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr string
	}{
		{
			name: "answer with sources",
			body: `{"type":"token","content":"Two "}` + "\n" +
				`{"type":"token","content":"left."}` + "\n" +
				`{"type":"sources","sources":[{"title":"Unit schedule","type":"function","excerpt":""}]}` + "\n" +
				`{"type":"done"}` + "\n",
			want: []string{"Two left.", "Sources:", "Unit schedule (function)"},
		},
		{
			name: "regulatory disclaimer",
			body: `{"type":"token","content":"Protected stairway."}` + "\n" +
				`{"type":"regulatory_disclaimer","value":true}` + "\n" +
				`{"type":"done"}` + "\n",
			want: []string{"Protected stairway.", "Regulatory information only"},
		},
		{
			name:    "error frame",
			body:    `{"type":"error","message":"The assistant is unavailable."}` + "\n",
			want:    []string{"The assistant is unavailable."},
			wantErr: "assistant error",
		},
		{
			name:    "truncated stream",
			body:    `{"type":"token","content":"Half"}` + "\n",
			wantErr: "without a done frame",
		},
		{
			name:    "malformed line",
			body:    "not json\n",
			wantErr: "malformed frame",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := renderFrames(strings.NewReader(tt.body), &out, false)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestRenderFrames_Raw(t *testing.T) {
	body := `{"type":"token","content":"Hi"}` + "\n" + `{"type":"done"}` + "\n"

	var out bytes.Buffer
	require.NoError(t, renderFrames(strings.NewReader(body), &out, true))
	assert.Equal(t, body, out.String())
}

func TestDevToken_RequiresSecret(t *testing.T) {
	_, err := devToken("", "t", "u")
	assert.Error(t, err)

	token, err := devToken("s", "t", "u")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))
}
