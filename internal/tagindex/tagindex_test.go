package tagindex_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vwplan/internal/tagindex"
)

// indexLine joins fields with real tabs. Packed parts inside the
// description field are written with a literal `\t` by the caller.
func indexLine(fields ...string) string {
	return strings.Join(fields, "\t")
}

func Test_ParseLine_Decodes_All_Fields_When_Line_Is_Well_Formed(t *testing.T) {
	t.Parallel()

	line := indexLine("proj", "notes/work.wiki", `12;"`, `vimwiki:notes/work\tWork#Fix bug`) + "\n"

	got, err := tagindex.ParseLine(line)
	require.NoError(t, err)

	want := tagindex.Occurrence{
		Tag:              "proj",
		File:             "notes/work.wiki",
		Line:             12,
		RawDescription:   `vimwiki:notes/work\tWork#Fix bug`,
		Description:      "Work#Fix bug",
		ShortDescription: "Fix bug",
		Link:             "/Work#Fix bug",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("occurrence mismatch (-want +got):\n%s", diff)
	}
}

func Test_ParseLine_Uses_Full_Description_When_No_Anchor(t *testing.T) {
	t.Parallel()

	got, err := tagindex.ParseLine(indexLine("todo", "inbox.wiki", `3;"`, `vimwiki:inbox\tinbox`))
	require.NoError(t, err)

	assert.Equal(t, "inbox", got.Description)
	assert.Equal(t, "inbox", got.ShortDescription)
	assert.Equal(t, "/inbox", got.Link)
}

func Test_ParseLine_Drops_Display_Part_When_Description_Has_Three_Parts(t *testing.T) {
	t.Parallel()

	got, err := tagindex.ParseLine(indexLine("meet", "diary/2024-03-07.wiki", `4;"`,
		`vimwiki:diary/2024-03-07\tdiary/2024-03-07#Standup\tStandup`))
	require.NoError(t, err)

	assert.Equal(t, "diary/2024-03-07#Standup", got.Description)
	assert.Equal(t, "Standup", got.ShortDescription)
	assert.Equal(t, "/diary/2024-03-07#Standup", got.Link)
}

func Test_ParseLine_Keeps_Text_After_First_Anchor_When_Anchors_Are_Nested(t *testing.T) {
	t.Parallel()

	got, err := tagindex.ParseLine(indexLine("x", "a.wiki", `1;"`, `vimwiki:a\ta#Top#Sub`))
	require.NoError(t, err)

	assert.Equal(t, "Top#Sub", got.ShortDescription)
}

func Test_ParseLine_Keeps_Trailing_Whitespace_In_Link_When_Present(t *testing.T) {
	t.Parallel()

	got, err := tagindex.ParseLine(indexLine("x", "a.wiki", `1;"`, `vimwiki:a\ta#Top  `))
	require.NoError(t, err)

	assert.Equal(t, "/a#Top  ", got.Link)
}

func Test_ParseLine_Ignores_Extra_Fields_When_Present(t *testing.T) {
	t.Parallel()

	got, err := tagindex.ParseLine(indexLine("x", "a.wiki", `7;"`, `vimwiki:a\ta`, "kind:t", "extra"))
	require.NoError(t, err)

	assert.Equal(t, 7, got.Line)
	assert.Equal(t, "a", got.Description)
}

func Test_ParseLine_Returns_Error_When_Line_Is_Malformed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		line string
		want error
	}{
		{name: "TwoFields", line: indexLine("x", "a.wiki"), want: tagindex.ErrTooFewFields},
		{name: "ThreeFields", line: indexLine("x", "a.wiki", `1;"`), want: tagindex.ErrTooFewFields},
		{name: "AddressWithoutSuffix", line: indexLine("x", "a.wiki", "1", `vimwiki:a\ta`), want: tagindex.ErrBadAddress},
		{name: "SearchPatternAddress", line: indexLine("x", "a.wiki", `/^foo$/;"`, `vimwiki:a\ta`), want: tagindex.ErrBadAddress},
		{name: "ZeroLine", line: indexLine("x", "a.wiki", `0;"`, `vimwiki:a\ta`), want: tagindex.ErrBadAddress},
		{name: "UnpackedDescription", line: indexLine("x", "a.wiki", `1;"`, "vimwiki:a"), want: tagindex.ErrNoDescription},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := tagindex.ParseLine(testCase.line)
			require.ErrorIs(t, err, testCase.want)
		})
	}
}
