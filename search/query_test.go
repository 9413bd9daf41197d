package search

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in      string
		want    Language
		wantErr bool
	}{
		{in: "english", want: English},
		{in: "Russian", want: Russian},
		{in: " both ", want: Both},
		{in: "simple", want: Simple},
		{in: "primary", want: English},
		{in: "secondary", want: Russian},
		{in: "combined", want: Both},
		{in: "AGNOSTIC", want: Simple},
		{in: "german", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLanguage(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLanguage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageList(t *testing.T) {
	assert.Equal(t, "english/russian/both/simple", LanguageList())
}

func TestRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, Request{Query: "", Language: English, Limit: 10}.Validate(), ErrEmptyQuery)
	assert.ErrorIs(t, Request{Query: "   ", Language: English, Limit: 10}.Validate(), ErrEmptyQuery)
	assert.ErrorIs(t, Request{Query: "go", Language: "klingon", Limit: 10}.Validate(), ErrInvalidLanguage)
	assert.ErrorIs(t, Request{Query: "go", Language: English, Limit: 0}.Validate(), ErrInvalidLimit)
	assert.NoError(t, Request{Query: "go", Language: Simple, Limit: 1}.Validate())
}

func TestHeadlineOptions_String(t *testing.T) {
	got := DefaultHeadlineOptions().String()
	assert.Equal(t,
		`StartSel="***", StopSel="***", MaxFragments=1, MaxWords=35, MinWords=15, HighlightAll=TRUE`, got)

	opts := HeadlineOptions{StartSel: "<b>", StopSel: "</b>", MaxWords: 20, MinWords: 5, MaxFragments: 2}
	assert.Equal(t,
		`StartSel="<b>", StopSel="</b>", MaxFragments=2, MaxWords=20, MinWords=5, HighlightAll=FALSE`, opts.String())
}

func TestHeadlineOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultHeadlineOptions().Validate())

	opts := DefaultHeadlineOptions()
	opts.StartSel = `"`
	assert.ErrorIs(t, opts.Validate(), ErrInvalidHeadline)

	opts = DefaultHeadlineOptions()
	opts.StopSel = ""
	assert.ErrorIs(t, opts.Validate(), ErrInvalidHeadline)
}

func TestBuildQuery_SingleLanguage(t *testing.T) {
	tests := []struct {
		lang   Language
		column string
		config string
	}{
		{English, `"content_tsv_en"`, ConfigEnglish},
		{Russian, `"content_tsv_ru"`, ConfigRussian},
		{Simple, `"content_tsv_simple"`, ConfigSimple},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			opts := DefaultHeadlineOptions()
			stmt, err := BuildQuery(Request{Query: "hello world", Language: tt.lang, Limit: 10}, opts)
			require.NoError(t, err)

			assert.Contains(t, stmt.SQL, fmt.Sprintf("ts_rank_cd(%s, query_0) AS rank", tt.column))
			assert.Contains(t, stmt.SQL, fmt.Sprintf("query_0 @@ %s", tt.column))
			assert.Contains(t, stmt.SQL, `FROM
    "extracted_files",
    plainto_tsquery($4::regconfig, $3) query_0`)
			assert.Contains(t, stmt.SQL, `ts_headline($1::regconfig, "content", query_0, $2) AS headline`)
			assert.Contains(t, stmt.SQL, `"file_extension" IN ($5, $6, $7)`)
			assert.Contains(t, stmt.SQL, "ORDER BY rank DESC")
			assert.True(t, strings.HasSuffix(stmt.SQL, "LIMIT $8"))
			assert.NotContains(t, stmt.SQL, "COALESCE")

			assert.Equal(t, []any{
				tt.config, opts.String(), "hello world", tt.config,
				".md", ".pdf", ".txt", 10,
			}, stmt.Args)
		})
	}
}

func TestBuildQuery_Combined(t *testing.T) {
	stmt, err := BuildQuery(Request{Query: "привет hello", Language: Both, Limit: 5}, DefaultHeadlineOptions())
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL,
		`COALESCE(ts_rank_cd("content_tsv_en", query_0), 0) + COALESCE(ts_rank_cd("content_tsv_ru", query_1), 0) AS rank`)
	assert.Contains(t, stmt.SQL, `plainto_tsquery($4::regconfig, $3) query_0`)
	assert.Contains(t, stmt.SQL, `plainto_tsquery($5::regconfig, $3) query_1`)
	assert.Contains(t, stmt.SQL, `(query_0 @@ "content_tsv_en" OR query_1 @@ "content_tsv_ru")`)
	assert.Contains(t, stmt.SQL, `ts_headline($1::regconfig, "content", query_0, $2)`)
	assert.True(t, strings.HasSuffix(stmt.SQL, "LIMIT $9"))

	require.Len(t, stmt.Args, 9)
	assert.Equal(t, ConfigEnglish, stmt.Args[0])
	assert.Equal(t, "привет hello", stmt.Args[2])
	assert.Equal(t, ConfigEnglish, stmt.Args[3])
	assert.Equal(t, ConfigRussian, stmt.Args[4])
	assert.Equal(t, 5, stmt.Args[8])
}

func TestBuildQuery_UserInputNeverInSQL(t *testing.T) {
	hostile := `x'); DROP TABLE extracted_files; --`
	opts := DefaultHeadlineOptions()
	opts.StartSel = "<mark>"

	for _, lang := range Languages {
		stmt, err := BuildQuery(Request{Query: hostile, Language: lang, Limit: 3}, opts)
		require.NoError(t, err)
		assert.NotContains(t, stmt.SQL, "DROP TABLE")
		assert.NotContains(t, stmt.SQL, "<mark>")
		assert.Contains(t, stmt.Args, hostile)
	}
}

func TestBuildQuery_RejectsBadInput(t *testing.T) {
	_, err := BuildQuery(Request{Query: "", Language: English, Limit: 10}, DefaultHeadlineOptions())
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = BuildQuery(Request{Query: "go", Language: "latin", Limit: 10}, DefaultHeadlineOptions())
	assert.ErrorIs(t, err, ErrInvalidLanguage)

	_, err = BuildQuery(Request{Query: "go", Language: English, Limit: 10}, HeadlineOptions{})
	assert.ErrorIs(t, err, ErrInvalidHeadline)
}
