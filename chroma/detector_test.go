package chroma_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/stagehand/chroma"
)

func TestDetector_DetectFromPath(t *testing.T) {
	t.Parallel()

	detector := chroma.NewDetector()

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "go file",
			path: "main.go",
			want: "Go",
		},
		{
			name: "nested path uses the base name",
			path: "internal/server/handler.go",
			want: "Go",
		},
		{
			name: "python file",
			path: "scripts/build.py",
			want: "Python",
		},
		{
			name: "unknown extension",
			path: "data.xyzzy",
			want: "",
		},
		{
			name: "empty path",
			path: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, detector.DetectFromPath(tt.path))
		})
	}
}
