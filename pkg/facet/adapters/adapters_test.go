package adapters

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/facet/pkg/facet"
)

type Greeter interface {
	Greet(name string) string
}

type Calculator interface {
	Add(a, b int) int
	DivMod(a, b int) (int, int, error)
}

type Farewell interface {
	Bye(name string) (string, error)
}

type calculator struct{ id int }

func (calculator) Add(a, b int) int { return a + b }

func (calculator) DivMod(a, b int) (int, int, error) {
	if b == 0 {
		return 0, 0, errors.New("division by zero")
	}
	return a / b, a % b, nil
}

func stubObject(t *testing.T) *facet.Object {
	t.Helper()
	obj, err := facet.NewBuilder().
		AddContract(
			facet.ContractOf[Greeter](facet.WithMarkers("Greet", "idempotent")),
			facet.ContractOf[Calculator](),
			facet.ContractOf[Farewell](),
		).
		HandleMethod("Greet", func(inv *facet.Invocation) (any, error) {
			return "Hello, " + inv.Arg(0).(string), nil
		}).
		SetFallback(&calculator{id: 1}).
		Build()
	require.NoError(t, err)
	return obj
}

type roundTrip func(*http.Request) (*http.Response, error)

func viaHandler(h http.Handler) roundTrip {
	return func(req *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Result(), nil
	}
}

func servers(t *testing.T) map[string]roundTrip {
	gin.SetMode(gin.TestMode)
	fa := NewDefaultFiberAdapter(stubObject(t))
	return map[string]roundTrip{
		"echo": viaHandler(NewDefaultEchoAdapter(stubObject(t))),
		"gin":  viaHandler(NewDefaultGinAdapter(stubObject(t))),
		"fiber": func(req *http.Request) (*http.Response, error) {
			return fa.GetApp().Test(req, -1)
		},
	}
}

func send(t *testing.T, rt roundTrip, method, path, body string) (int, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := rt(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestAdapters_Calls(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		want   string
	}{
		{"entry handler", "/facet/Greeter/Greet", `{"args":["Ada"]}`, http.StatusOK, `{"result":"Hello, Ada"}`},
		{"qualified contract", "/facet/adapters.Greeter/Greet", `{"args":["Ada"]}`, http.StatusOK, `{"result":"Hello, Ada"}`},
		{"fallback", "/facet/Calculator/Add", `{"args":[2,3]}`, http.StatusOK, `{"result":5}`},
		{"tuple result", "/facet/Calculator/DivMod", `{"args":[7,2]}`, http.StatusOK, `{"result":[3,1]}`},
		{"handler failure", "/facet/Calculator/DivMod", `{"args":[7,0]}`, http.StatusInternalServerError, `"code":"HandlerExecutionFailure"`},
		{"wrong argument type", "/facet/Calculator/Add", `{"args":["two",3]}`, http.StatusBadRequest, `"code":"ArgumentError"`},
		{"wrong arity", "/facet/Calculator/Add", `{"args":[2]}`, http.StatusBadRequest, `"code":"ArgumentError"`},
		{"unknown contract", "/facet/Nope/Greet", `{"args":[]}`, http.StatusNotFound, `"code":"CastFailure"`},
		{"unknown method", "/facet/Greeter/Wave", `{"args":[]}`, http.StatusNotFound, `"code":"ResolutionFailure"`},
		{"unresolvable", "/facet/Farewell/Bye", `{"args":["Ada"]}`, http.StatusNotImplemented, `"code":"ResolutionFailure"`},
	}

	for name, rt := range servers(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				status, body := send(t, rt, http.MethodPost, tt.path, tt.body)
				assert.Equal(t, tt.status, status, body)
				assert.Contains(t, body, tt.want)
			})
		}
	}
}

func TestAdapters_Describe(t *testing.T) {
	for name, rt := range servers(t) {
		t.Run(name, func(t *testing.T) {
			status, body := send(t, rt, http.MethodGet, "/facet", "")
			require.Equal(t, http.StatusOK, status, body)

			var infos []ContractInfo
			require.NoError(t, json.Unmarshal([]byte(body), &infos))
			require.Len(t, infos, 4)
			assert.Equal(t, "Greeter", infos[0].Name)
			assert.Equal(t, []MethodInfo{{Name: "Greet", Signature: "Greet(string)", Markers: []string{"idempotent"}}}, infos[0].Methods)
			assert.Equal(t, "Synthesized", infos[3].Name)
		})
	}
}

func TestAdapters_Names(t *testing.T) {
	obj := stubObject(t)
	assert.Equal(t, "Echo", NewDefaultEchoAdapter(obj).Name())
	assert.Equal(t, "Gin", NewDefaultGinAdapter(obj).Name())
	assert.Equal(t, "Fiber", NewDefaultFiberAdapter(obj).Name())
}

func TestAdapters_CustomPrefix(t *testing.T) {
	ea := NewDefaultEchoAdapter(stubObject(t), WithPrefix("/rpc"))
	status, body := send(t, viaHandler(ea), http.MethodPost, "/rpc/Greeter/Greet", `{"args":["Bo"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"result":"Hello, Bo"}`, body)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("plain")))
	assert.Equal(t, http.StatusBadRequest, StatusFor(facet.NewError(facet.ArgumentErrorCode, "x")))
}
