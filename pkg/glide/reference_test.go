package glide_test

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glide-client/pkg/glide"
	"github.com/fivetwenty-io/glide-client/pkg/glidetest"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want glide.Reference
	}{
		{
			name: "full link",
			link: "https://dev0001.service-now.com/api/now/table/sys_user/6816f79cc0a8016401c5a33be04be441",
			want: glide.Reference{Table: "sys_user", SysID: "6816f79cc0a8016401c5a33be04be441"},
		},
		{name: "two segments", link: "cmdb_ci/abc", want: glide.Reference{Table: "cmdb_ci", SysID: "abc"}},
		{name: "no separator", link: "abc", want: glide.Reference{}},
		{name: "empty", link: "", want: glide.Reference{}},
		{name: "trailing separator", link: "api/now/table/sys_user/", want: glide.Reference{}},
		{name: "leading separator", link: "/abc", want: glide.Reference{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := glide.ParseReference(tt.link)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == glide.Reference{}, got.IsZero())
		})
	}
}

func TestReference_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	type task struct {
		CallerID glide.Reference `json:"caller_id"`
	}

	tests := []struct {
		name string
		body string
		want glide.Reference
	}{
		{
			name: "reference object",
			body: `{"caller_id":{"link":"https://x/api/now/table/sys_user/abc","value":"abc"}}`,
			want: glide.Reference{Table: "sys_user", SysID: "abc"},
		},
		{name: "empty reference", body: `{"caller_id":""}`, want: glide.Reference{}},
		{name: "unexpected type", body: `{"caller_id":42}`, want: glide.Reference{}},
		{name: "unparsable link", body: `{"caller_id":{"link":"nowhere"}}`, want: glide.Reference{}},
		{
			name: "already decoded",
			body: `{"caller_id":{"table":"sys_user","sys_id":"abc"}}`,
			want: glide.Reference{Table: "sys_user", SysID: "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got task

			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.want, got.CallerID)
		})
	}
}

func TestReference_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "sys_user/abc", glide.Reference{Table: "sys_user", SysID: "abc"}.String())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	server := glidetest.NewServer()
	t.Cleanup(server.Close)

	ids := server.Seed("incident",
		glidetest.Record{"number": "INC1"},
		glidetest.Record{"number": "INC2"},
	)

	ref := glide.Reference{Table: "incident", SysID: ids[1]}

	t.Run("cursor", func(t *testing.T) {
		t.Parallel()

		cursor, err := glide.ResolveCursor[incident](context.Background(), ref, glide.WithConfig(server.Config()))
		require.NoError(t, err)
		assert.Equal(t, "sys_id="+ids[1], cursor.EncodedQuery())

		items := cursor.All(context.Background())
		assert.Equal(t, []string{"INC2"}, numbers(items))
	})

	t.Run("item", func(t *testing.T) {
		t.Parallel()

		item, err := glide.ResolveItem[incident](context.Background(), ref, glide.WithConfig(server.Config()))
		require.NoError(t, err)
		assert.Equal(t, ids[1], item.SysID)
	})

	t.Run("missing item", func(t *testing.T) {
		t.Parallel()

		_, err := glide.ResolveItem[incident](context.Background(),
			glide.Reference{Table: "incident", SysID: "missing"}, glide.WithConfig(server.Config()))
		require.ErrorIs(t, err, glide.ErrRecordNotFound)
		assert.True(t, glide.IsNotFound(err))
	})

	t.Run("zero reference", func(t *testing.T) {
		t.Parallel()

		_, err := glide.ResolveCursor[incident](context.Background(), glide.Reference{}, glide.WithConfig(server.Config()))
		require.ErrorIs(t, err, glide.ErrTableRequired)
	})
}
