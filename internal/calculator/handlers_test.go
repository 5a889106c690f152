package calculator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/testutil"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	oldLogger := observability.Logger
	observability.Logger = zap.NewNop()
	t.Cleanup(func() { observability.Logger = oldLogger })

	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler())
	return r
}

func post(t *testing.T, h http.Handler, path string) DisplayResponse {
	t.Helper()

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, path, nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp DisplayResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func TestKeypadEndpoints(t *testing.T) {
	h := newTestServer(t)

	steps := []struct {
		path string
		want string
	}{
		{path: "/calculator/digit/0", want: "0"},
		{path: "/calculator/digit/3", want: "3"},
		{path: "/calculator/operator/add", want: "3+"},
		{path: "/calculator/operator/multiply", want: "3+"},
		{path: "/calculator/digit/4", want: "3+4"},
		{path: "/calculator/operator/multiply", want: "3+4*"},
		{path: "/calculator/digit/2", want: "3+4*2"},
		{path: "/calculator/dot", want: "3+4*2."},
		{path: "/calculator/dot", want: "3+4*2."},
		{path: "/calculator/digit/5", want: "3+4*2.5"},
		{path: "/calculator/equal", want: "13"},
	}

	for _, s := range steps {
		resp := post(t, h, s.path)
		if resp.Display != s.want {
			t.Fatalf("%s: expected display %q, got %q", s.path, s.want, resp.Display)
		}
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/display", nil), h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp DisplayResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "13" || resp.Expression != "3+4*2.5" || resp.Failed {
		t.Fatalf("unexpected display state: %+v", resp)
	}
}

func TestKeypadDivisionByZeroShowsErrorUntilClear(t *testing.T) {
	h := newTestServer(t)

	post(t, h, "/calculator/digit/5")
	post(t, h, "/calculator/operator/divide")
	post(t, h, "/calculator/digit/0")

	resp := post(t, h, "/calculator/equal")
	if resp.Display != "Error!\nTap CLR to continue." || !resp.Failed {
		t.Fatalf("expected error display, got %+v", resp)
	}

	resp = post(t, h, "/calculator/digit/7")
	if resp.Display != ErrorText {
		t.Fatalf("expected error display to stay until clear, got %q", resp.Display)
	}

	resp = post(t, h, "/calculator/clear")
	if resp.Display != "0" || resp.Failed {
		t.Fatalf("expected reset after clear, got %+v", resp)
	}
}

func TestKeypadRejectsUnknownKeys(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{
		"/calculator/digit/x",
		"/calculator/digit/12",
		"/calculator/operator/modulo",
	} {
		t.Run(path, func(t *testing.T) {
			w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, path, nil), h)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			if body["error"] != "unknown key" {
				t.Fatalf("expected error %q, got %q", "unknown key", body["error"])
			}
		})
	}
}

func TestPressAppliesSequence(t *testing.T) {
	h := newTestServer(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", PressRequest{Keys: "8-3-2="})
	w := testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp DisplayResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)

	if resp.Display != "3" {
		t.Fatalf("expected display %q, got %q", "3", resp.Display)
	}
	if len(resp.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(resp.Steps))
	}
	if last := resp.Steps[len(resp.Steps)-1]; last.Key != "=" || last.Display != "3" {
		t.Fatalf("unexpected last step: %+v", last)
	}
}

func TestPressRejectsInvalidInput(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		body any
		want string
	}{
		{name: "empty keys", body: PressRequest{}, want: "no keys provided"},
		{name: "unknown key", body: PressRequest{Keys: "1+(2)"}, want: "unknown key"},
		{name: "wrong type", body: map[string]int{"keys": 5}, want: "invalid request body"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/press", tc.body)
			w := testutil.ExecuteRequest(req, h)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			testutil.DecodeJSONBody(t, w.Body, &body)
			if body["error"] != tc.want {
				t.Fatalf("expected error %q, got %q", tc.want, body["error"])
			}
		})
	}

	// Rejected sequences leave the session untouched.
	display := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/display", nil), h)
	var resp DisplayResponse
	testutil.DecodeJSONBody(t, display.Body, &resp)
	if resp.Expression != "" {
		t.Fatalf("expected empty expression, got %q", resp.Expression)
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		expr   string
		status int
		result string
	}{
		{expr: "3+4*2", status: http.StatusOK, result: "11"},
		{expr: "1/3", status: http.StatusOK, result: "0.33333333"},
		{expr: "2*0.5", status: http.StatusOK, result: "1"},
		{expr: "5/0", status: http.StatusUnprocessableEntity},
		{expr: "3+", status: http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Expression: tc.expr})
			w := testutil.ExecuteRequest(req, h)
			testutil.CheckResponseCode(t, tc.status, w.Code)

			if tc.status != http.StatusOK {
				var body map[string]string
				testutil.DecodeJSONBody(t, w.Body, &body)
				if body["error"] != "expression could not be evaluated" {
					t.Fatalf("unexpected error body: %v", body)
				}
				return
			}

			var resp EvaluateResponse
			testutil.DecodeJSONBody(t, w.Body, &resp)
			if resp.Result != tc.result || resp.Expression != tc.expr {
				t.Fatalf("expected %q = %q, got %+v", tc.expr, tc.result, resp)
			}
		})
	}
}

func TestEvaluateLogsResult(t *testing.T) {
	h := newTestServer(t)

	core, logs := observer.New(zap.InfoLevel)
	observability.Logger = zap.New(core)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Expression: "8-3-2"})
	w := testutil.ExecuteRequest(req, h)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	entries := logs.FilterMessage("expression evaluated").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["expression"] != "8-3-2" || fields["result"] != "3" {
		t.Fatalf("unexpected log fields: %v", fields)
	}
}
