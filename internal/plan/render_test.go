package plan_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vwplan/internal/fs"
	"github.com/calvinalkan/vwplan/internal/plan"
	"github.com/calvinalkan/vwplan/internal/tagindex"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newRenderer(t *testing.T) (*plan.Renderer, string) {
	t.Helper()

	root := t.TempDir()

	return &plan.Renderer{FS: fs.NewReal(), Root: root}, root
}

func Test_StripMarkers_Removes_All_Colon_Tokens_When_Present(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want string
	}{
		{in: "Some text :proj: more :x: text", want: "Some text  more  text"},
		{in: ":a: :b-c: :d/e:", want: "  "},
		{in: "no markers here", want: "no markers here"},
		{in: "a lone : colon", want: "a lone : colon"},
		{in: "time 10:30 ok", want: "time 10:30 ok"},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, plan.StripMarkers(testCase.in), "input %q", testCase.in)
	}
}

func Test_Render_Line_Strips_Markers_And_Appends_Link_When_Display_Is_Line(t *testing.T) {
	t.Parallel()

	r, root := newRenderer(t)
	writeFile(t, filepath.Join(root, "notes/work.wiki"), "= Work =\n   Some text :proj: more :x: text  \n")

	occ := tagindex.Occurrence{Tag: "proj", File: "notes/work.wiki", Line: 2, Link: "/Work#Fix bug  "}

	got, err := r.Render(occ, plan.DisplayLine)
	require.NoError(t, err)
	assert.Equal(t, "Some text  more  text[[/Work#Fix bug|@]]\n", got)
}

func Test_Render_Line_Removes_Tag_Containing_Colon_When_Tag_Is_Date_Based(t *testing.T) {
	t.Parallel()

	r, root := newRenderer(t)
	writeFile(t, filepath.Join(root, "home.wiki"), "Call plumber :daily:2024-03-07:\n")

	occ := tagindex.Occurrence{Tag: "daily:2024-03-07", File: "home.wiki", Line: 1, Link: "/home"}

	got, err := r.Render(occ, plan.DisplayLine)
	require.NoError(t, err)
	assert.Equal(t, "Call plumber [[/home|@]]\n", got)
}

func Test_Render_Description_Builds_Bullet_When_Display_Is_Description(t *testing.T) {
	t.Parallel()

	// Description mode never touches the filesystem.
	r := &plan.Renderer{FS: fs.NewReal(), Root: "/does/not/exist"}

	occ, err := tagindex.ParseLine("proj\tnotes/work.wiki\t12;\"\tvimwiki:notes/work\\tWork#Fix bug")
	require.NoError(t, err)
	assert.Equal(t, "Fix bug", occ.ShortDescription)

	got, err := r.Render(occ, plan.DisplayDescription)
	require.NoError(t, err)
	assert.Equal(t, "* [[/Work#Fix bug|Fix bug]]\n", got)
}

func Test_Render_File_Returns_Sanitized_Contents_When_Display_Is_File(t *testing.T) {
	t.Parallel()

	r, root := newRenderer(t)
	writeFile(t, filepath.Join(root, "recipe.wiki"), "Pancakes :cook:\nbody :a: end\n")

	got, err := r.Render(tagindex.Occurrence{Tag: "cook", File: "recipe.wiki", Line: 1, Link: "/recipe"}, plan.DisplayFile)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes \nbody  end\n", got)
}

func Test_Render_Returns_RenderError_When_Source_Unavailable(t *testing.T) {
	t.Parallel()

	r, root := newRenderer(t)
	writeFile(t, filepath.Join(root, "short.wiki"), "only one line\n")

	testCases := []struct {
		name    string
		occ     tagindex.Occurrence
		display plan.Display
		want    error
	}{
		{
			name:    "LineModeMissingFile",
			occ:     tagindex.Occurrence{Tag: "x", File: "gone.wiki", Line: 1},
			display: plan.DisplayLine,
			want:    plan.ErrSourceMissing,
		},
		{
			name:    "FileModeMissingFile",
			occ:     tagindex.Occurrence{Tag: "x", File: "gone.wiki", Line: 1},
			display: plan.DisplayFile,
			want:    plan.ErrSourceMissing,
		},
		{
			name:    "LineOutOfRange",
			occ:     tagindex.Occurrence{Tag: "x", File: "short.wiki", Line: 5},
			display: plan.DisplayLine,
			want:    plan.ErrLineOutOfRange,
		},
		{
			name:    "UnknownDisplay",
			occ:     tagindex.Occurrence{Tag: "x", File: "short.wiki", Line: 1},
			display: "table",
			want:    plan.ErrUnknownDisplay,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := r.Render(testCase.occ, testCase.display)
			require.ErrorIs(t, err, testCase.want)

			var renderErr *plan.RenderError
			require.True(t, errors.As(err, &renderErr))
			assert.Equal(t, testCase.occ.File, renderErr.File)
		})
	}
}
