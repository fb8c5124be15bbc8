package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunger/cfdb"
	"github.com/chunger/cfdb/graph"
	"github.com/chunger/cfdb/internal/config"
)

func newTestServer(t *testing.T) (*httptest.Server, *graph.Graph) {
	t.Helper()
	info := config.DB{Dir: t.TempDir(), Engine: string(cfdb.EngineMemory)}
	db, err := cfdb.Init(info, graph.All)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	g := graph.New(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(g, config.Default().HTTP, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, g
}

func do(t *testing.T, method, url, contentType, body string) (int, Response) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, contentTypeJSON, resp.Header.Get("Content-Type"))

	var r Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	return resp.StatusCode, r
}

func postNode(t *testing.T, ts *httptest.Server, body string) *graph.Node {
	t.Helper()
	status, r := do(t, http.MethodPost, ts.URL+"/nodes", contentTypeJSON, body)
	require.Equal(t, http.StatusCreated, status, r.Error)
	require.NotNil(t, r.Node)
	return r.Node
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	status, r := do(t, http.MethodGet, ts.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, StatusOK, r.Status)
}

func TestNodes(t *testing.T) {
	ts, g := newTestServer(t)

	alice := postNode(t, ts, `{"name":"alice","type":"person","description":"likes tea"}`)
	assert.NotZero(t, alice.ID)
	assert.NotZero(t, alice.TypeCode)
	assert.NotZero(t, alice.CreatedAt)
	postNode(t, ts, `{"name":"albert","type":"person"}`)
	postNode(t, ts, `{"name":"bob"}`)

	status, r := do(t, http.MethodGet, fmt.Sprintf("%s/nodes/%d", ts.URL, alice.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, alice, r.Node)

	stored, found, err := g.Node(alice.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "likes tea", stored.Description)

	status, r = do(t, http.MethodGet, ts.URL+"/nodes?prefix=al", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, r.Nodes, 2)
	assert.Equal(t, "albert", r.Nodes[0].Name)
	assert.Equal(t, "alice", r.Nodes[1].Name)

	status, r = do(t, http.MethodGet, ts.URL+"/nodes?type=entity", "", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, r.Nodes, 1)
	assert.Equal(t, "bob", r.Nodes[0].Name)

	status, r = do(t, http.MethodGet, ts.URL+"/nodes?n=2", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, r.Nodes, 2)

	status, _ = do(t, http.MethodDelete, fmt.Sprintf("%s/nodes/%d", ts.URL, alice.ID), "", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodGet, fmt.Sprintf("%s/nodes/%d", ts.URL, alice.ID), "", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, http.MethodDelete, fmt.Sprintf("%s/nodes/%d", ts.URL, alice.ID), "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNodes_BadRequests(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodGet, "/nodes/abc", ""},
		{http.MethodGet, "/nodes/0", ""},
		{http.MethodGet, "/nodes?n=-1", ""},
		{http.MethodGet, "/nodes?n=0", ""},
		{http.MethodPost, "/nodes", `{"name":`},
		{http.MethodPost, "/nodes", `{"type":"person"}`},
		{http.MethodGet, "/nodes/1/edges?dir=up", ""},
		{http.MethodPost, "/edges", `{"name":"knows"}`},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, r := do(t, tc.method, ts.URL+tc.path, contentTypeJSON, tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, StatusError, r.Status)
			assert.NotEmpty(t, r.Error)
		})
	}
}

func TestEdges(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := postNode(t, ts, `{"name":"alice"}`)
	bob := postNode(t, ts, `{"name":"bob"}`)

	status, r := do(t, http.MethodPost, ts.URL+"/edges", contentTypeJSON,
		fmt.Sprintf(`{"name":"knows","head":%d,"tail":%d}`, alice.ID, bob.ID))
	require.Equal(t, http.StatusCreated, status, r.Error)
	edge := r.Edge
	require.NotNil(t, edge)
	assert.Equal(t, graph.DefaultEdgeType, edge.Type)

	status, r = do(t, http.MethodGet, fmt.Sprintf("%s/edges/%d", ts.URL, edge.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, edge, r.Edge)

	status, r = do(t, http.MethodGet, fmt.Sprintf("%s/nodes/%d/edges", ts.URL, alice.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, r.Edges, 1)
	assert.Equal(t, edge.ID, r.Edges[0].ID)

	status, r = do(t, http.MethodGet, fmt.Sprintf("%s/nodes/%d/edges?dir=in", ts.URL, alice.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, r.Edges)

	status, r = do(t, http.MethodGet, fmt.Sprintf("%s/nodes/%d/edges?dir=in", ts.URL, bob.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, r.Edges, 1)

	status, _ = do(t, http.MethodPost, ts.URL+"/edges", contentTypeJSON,
		fmt.Sprintf(`{"name":"knows","head":%d,"tail":999}`, alice.ID))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, http.MethodDelete, fmt.Sprintf("%s/edges/%d", ts.URL, edge.ID), "", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodGet, fmt.Sprintf("%s/edges/%d", ts.URL, edge.ID), "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPairs(t *testing.T) {
	ts, _ := newTestServer(t)

	form := url.Values{"value": {"cfdb"}}.Encode()
	status, _ := do(t, http.MethodPut, ts.URL+"/kv/app.name", "application/x-www-form-urlencoded", form)
	require.Equal(t, http.StatusOK, status)

	status, r := do(t, http.MethodGet, ts.URL+"/kv/app.name", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cfdb", r.Value)

	status, _ = do(t, http.MethodDelete, ts.URL+"/kv/app.name", "", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, http.MethodGet, ts.URL+"/kv/app.name", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNodes_ReplaceRequiresStoredID(t *testing.T) {
	ts, g := newTestServer(t)

	status, r := do(t, http.MethodPost, ts.URL+"/nodes", contentTypeJSON, `{"id":2,"name":"Precious"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, StatusError, r.Status)
	_, found, err := g.Node(2)
	require.NoError(t, err)
	assert.False(t, found)

	a := postNode(t, ts, `{"name":"A"}`)
	b := postNode(t, ts, `{"name":"B"}`)
	assert.NotEqual(t, a.ID, b.ID)

	status, r = do(t, http.MethodGet, ts.URL+"/nodes", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, r.Nodes, 2)
}

func TestNodes_ReplaceKeepsCreatedAt(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := postNode(t, ts, `{"name":"alice","type":"person"}`)

	status, r := do(t, http.MethodPost, ts.URL+"/nodes", contentTypeJSON,
		fmt.Sprintf(`{"id":%d,"name":"alicia","type":"person"}`, alice.ID))
	require.Equal(t, http.StatusOK, status, r.Error)
	require.NotNil(t, r.Node)
	assert.Equal(t, alice.ID, r.Node.ID)
	assert.Equal(t, alice.CreatedAt, r.Node.CreatedAt)

	status, r = do(t, http.MethodGet, fmt.Sprintf("%s/nodes/%d", ts.URL, alice.ID), "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alicia", r.Node.Name)
	assert.Equal(t, alice.CreatedAt, r.Node.CreatedAt)
}

func TestEdges_ReplaceRequiresStoredID(t *testing.T) {
	ts, _ := newTestServer(t)
	alice := postNode(t, ts, `{"name":"alice"}`)
	bob := postNode(t, ts, `{"name":"bob"}`)

	status, _ := do(t, http.MethodPost, ts.URL+"/edges", contentTypeJSON,
		fmt.Sprintf(`{"id":99,"name":"knows","head":%d,"tail":%d}`, alice.ID, bob.ID))
	assert.Equal(t, http.StatusNotFound, status)

	status, r := do(t, http.MethodPost, ts.URL+"/edges", contentTypeJSON,
		fmt.Sprintf(`{"name":"knows","head":%d,"tail":%d}`, alice.ID, bob.ID))
	require.Equal(t, http.StatusCreated, status, r.Error)
	edge := r.Edge

	status, r = do(t, http.MethodPost, ts.URL+"/edges", contentTypeJSON,
		fmt.Sprintf(`{"id":%d,"name":"likes","head":%d,"tail":%d}`, edge.ID, alice.ID, bob.ID))
	require.Equal(t, http.StatusOK, status, r.Error)
	assert.Equal(t, "likes", r.Edge.Name)
	assert.Equal(t, edge.CreatedAt, r.Edge.CreatedAt)
}
