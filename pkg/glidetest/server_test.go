package glidetest_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glide-client/pkg/glidetest"
)

type listResponse struct {
	Result []glidetest.Record `json:"result"`
}

func get(t *testing.T, server *glidetest.Server, path string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)

	resp, err := server.Client().Do(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, body
}

func list(t *testing.T, server *glidetest.Server, query string) ([]string, string) {
	t.Helper()

	resp, body := get(t, server, "/api/now/table/incident?"+query)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var decoded listResponse

	require.NoError(t, json.Unmarshal(body, &decoded))

	numbers := make([]string, 0, len(decoded.Result))
	for _, row := range decoded.Result {
		numbers = append(numbers, row["number"].(string))
	}

	return numbers, resp.Header.Get("X-Total-Count")
}

func seedIncidents(server *glidetest.Server) {
	server.Seed("incident",
		glidetest.Record{"number": "INC1", "priority": "1", "assigned_to": "", "ORG": "phone"},
		glidetest.Record{"number": "INC2", "priority": "2", "assigned_to": map[string]interface{}{"link": "x/sys_user/u1", "value": "u1"}},
		glidetest.Record{"number": "INC3", "priority": "3", "short_description": "disk full"},
		glidetest.Record{"number": "PRB1", "priority": "1", "short_description": "disk slow", "ORG": "web"},
	)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestServer_List(t *testing.T) {
	t.Parallel()

	server := glidetest.NewServer()
	t.Cleanup(server.Close)
	seedIncidents(server)

	tests := []struct {
		name      string
		query     string
		want      []string
		wantTotal string
	}{
		{name: "no query", query: "", want: []string{"INC1", "INC2", "INC3", "PRB1"}, wantTotal: "4"},
		{name: "equals", query: "sysparm_query=priority=1", want: []string{"INC1", "PRB1"}, wantTotal: "2"},
		{name: "not equals", query: "sysparm_query=priority!=1", want: []string{"INC2", "INC3"}, wantTotal: "2"},
		{name: "and", query: "sysparm_query=priority=1^numberSTARTSWITHINC", want: []string{"INC1"}, wantTotal: "1"},
		{name: "or", query: "sysparm_query=priority=2^ORpriority=3", want: []string{"INC2", "INC3"}, wantTotal: "2"},
		{name: "upper case column after and", query: "sysparm_query=priority=1^ORG=web", want: []string{"PRB1"}, wantTotal: "1"},
		{name: "like", query: "sysparm_query=short_descriptionLIKEdisk", want: []string{"INC3", "PRB1"}, wantTotal: "2"},
		{name: "in", query: "sysparm_query=numberININC1,PRB1", want: []string{"INC1", "PRB1"}, wantTotal: "2"},
		{name: "is empty", query: "sysparm_query=assigned_toISEMPTY", want: []string{"INC1", "INC3", "PRB1"}, wantTotal: "3"},
		{name: "reference value", query: "sysparm_query=assigned_to=u1", want: []string{"INC2"}, wantTotal: "1"},
		{
			name:      "order by desc",
			query:     "sysparm_query=priority=1^ORDERBYDESCnumber",
			want:      []string{"PRB1", "INC1"},
			wantTotal: "2",
		},
		{
			name:      "pagination",
			query:     "sysparm_limit=2&sysparm_offset=1",
			want:      []string{"INC2", "INC3"},
			wantTotal: "4",
		},
		{
			name:      "offset past the end",
			query:     "sysparm_limit=2&sysparm_offset=10",
			want:      []string{},
			wantTotal: "4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, total := list(t, server, tt.query)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestServer_InvalidQuery(t *testing.T) {
	t.Parallel()

	server := glidetest.NewServer()
	defer server.Close()

	resp, body := get(t, server, "/api/now/table/incident?sysparm_query=nonsense")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "unsupported clause")
}

func TestServer_Records(t *testing.T) {
	t.Parallel()

	server := glidetest.NewServer()
	t.Cleanup(server.Close)

	ids := server.Seed("incident", glidetest.Record{"sys_id": "fixed", "number": "INC1"}, glidetest.Record{"number": "INC2"})
	require.Len(t, ids, 2)
	assert.Equal(t, "fixed", ids[0])
	assert.Len(t, ids[1], 32)

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		resp, body := get(t, server, "/api/now/table/incident/fixed")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"result":{"sys_id":"fixed","number":"INC1"}}`, string(body))
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		resp, body := get(t, server, "/api/now/table/incident/missing")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, string(body), `"status":"failure"`)
	})

	t.Run("records are copies", func(t *testing.T) {
		t.Parallel()

		rows := server.Records("incident")
		rows[0]["number"] = "changed"

		assert.Equal(t, "INC1", server.Records("incident")[0]["number"])
	})
}

func TestServer_Auth(t *testing.T) {
	t.Parallel()

	server := glidetest.NewServer()
	defer server.Close()

	server.RequireAuthorization("Bearer right")

	resp, _ := get(t, server, "/api/now/table/incident")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/now/table/incident", strings.NewReader(""))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer right")

	authorized, err := server.Client().Do(req)
	require.NoError(t, err)
	_ = authorized.Body.Close()
	assert.Equal(t, http.StatusOK, authorized.StatusCode)

	requests := server.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "", requests[0].Authorization)
	assert.Equal(t, "Bearer right", requests[1].Authorization)
}

func TestServer_FailWith(t *testing.T) {
	t.Parallel()

	server := glidetest.NewServer()
	defer server.Close()

	server.FailWith(http.StatusServiceUnavailable)

	resp, _ := get(t, server, "/api/now/table/incident")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	server.FailWith(0)
	server.OmitTotalCount(true)

	resp, _ = get(t, server, "/api/now/table/incident")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Total-Count"))
}
