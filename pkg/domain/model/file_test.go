package model_test

import (
	"testing"

	"github.com/m-mizutani/drivemirror/pkg/domain/model"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestJoinPath(t *testing.T) {
	gt.Value(t, model.JoinPath("", "logo.png")).Equal("logo.png")
	gt.Value(t, model.JoinPath("proj", "logo.png")).Equal("proj/logo.png")
	gt.Value(t, model.JoinPath(model.JoinPath("proj", "docs"), "budget")).Equal("proj/docs/budget")
}

func TestValidateName(t *testing.T) {
	gt.NoError(t, model.ValidateName("Q1 report.txt"))
	gt.NoError(t, model.ValidateName("..hidden"))

	err := model.ValidateName("Q1/Q2 report.txt")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagInvalidArgument))
}

func TestValidatePaths(t *testing.T) {
	tests := []struct {
		name    string
		paths   []string
		wantTag bool
		tagName string
	}{
		{
			name:  "Unique paths",
			paths: []string{"proj/docs/budget", "proj/logo.png"},
		},
		{
			name:  "No paths",
			paths: nil,
		},
		{
			name:    "Duplicate path",
			paths:   []string{"proj/a.txt", "proj/b.txt", "proj/a.txt"},
			wantTag: true,
			tagName: "path_collision",
		},
		{
			name:    "Empty path",
			paths:   []string{"proj/a.txt", ""},
			wantTag: true,
			tagName: "invalid_argument",
		},
		{
			name:    "File shadows directory",
			paths:   []string{"proj/docs", "proj/docs/budget"},
			wantTag: true,
			tagName: "path_collision",
		},
		{
			name:  "Sibling names sharing a prefix",
			paths: []string{"proj/doc", "proj/docs/budget"},
		},
		{
			name:    "Trailing separator",
			paths:   []string{"proj/"},
			wantTag: true,
			tagName: "invalid_argument",
		},
		{
			name:    "Parent directory segment",
			paths:   []string{"proj/../escape"},
			wantTag: true,
			tagName: "invalid_argument",
		},
		{
			name:    "Absolute path",
			paths:   []string{"/etc/passwd"},
			wantTag: true,
			tagName: "invalid_argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidatePaths(tt.paths)
			if !tt.wantTag {
				gt.NoError(t, err)
				return
			}
			gt.Error(t, err)
			gt.Value(t, types.ErrorKind(err)).Equal(tt.tagName)
		})
	}
}

func TestValidateFiles(t *testing.T) {
	t.Run("nil entry is rejected", func(t *testing.T) {
		err := model.ValidateFiles([]*model.CollectedFile{{Path: "a"}, nil})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidArgument))
	})

	t.Run("collision is rejected", func(t *testing.T) {
		err := model.ValidateFiles([]*model.CollectedFile{
			{Path: "proj/same", Content: []byte("1")},
			{Path: "proj/same", Content: []byte("2")},
		})
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagPathCollision))
	})
}
