package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pable/go-rushing-metrics/internal/export"
	"github.com/pable/go-rushing-metrics/internal/model"
)

// fakeComparer records the last selection and returns a canned comparison.
type fakeComparer struct {
	seasons []int
	teams   []string
	err     error

	lastSel model.Selection
	lastTop int
}

func (f *fakeComparer) Seasons(context.Context) ([]int, error) { return f.seasons, f.err }
func (f *fakeComparer) Teams(context.Context) ([]string, error) { return f.teams, f.err }

func (f *fakeComparer) Compare(_ context.Context, sel model.Selection, top int) (model.Comparison, error) {
	f.lastSel, f.lastTop = sel, top
	if err := sel.Validate(); err != nil {
		return model.Comparison{}, err
	}
	if f.err != nil {
		return model.Comparison{}, f.err
	}
	if sel.Season != 2022 {
		return model.Comparison{Selection: sel}, nil
	}
	bins := model.Bins()
	one := []model.CarryRecord{
		{Team: sel.TeamOne, Season: 2022, StatBin: bins[0], Count: 40, CountOverWindowSum: 0.4, CumSumAsWindowPercentage: 0.4},
		{Team: sel.TeamOne, Season: 2022, StatBin: bins[1], Count: 60, CountOverWindowSum: 0.6, CumSumAsWindowPercentage: 1.0},
	}
	two := []model.CarryRecord{
		{Team: sel.TeamTwo, Season: 2022, StatBin: bins[0], Count: 50, CountOverWindowSum: 0.5, CumSumAsWindowPercentage: 0.5},
		{Team: sel.TeamTwo, Season: 2022, StatBin: bins[1], Count: 50, CountOverWindowSum: 0.5, CumSumAsWindowPercentage: 1.0},
	}
	return model.Comparison{
		Selection:      sel,
		TeamOneCarries: 100,
		TeamTwoCarries: 100,
		Carries:        append(append([]model.CarryRecord{}, one...), two...),
		TeamOneRows:    one,
		TeamTwoRows:    two,
		TopDifferences: []model.ComparisonRecord{
			{PrimaryTeam: sel.TeamOne, ComparedAgainstTeam: sel.TeamTwo, Season: 2022, StatBin: bins[0], Difference: -0.1},
			{PrimaryTeam: sel.TeamOne, ComparedAgainstTeam: sel.TeamTwo, Season: 2022, StatBin: bins[1], Difference: 0.1},
		},
		CumulativeDifference: []model.BinValue{{StatBin: bins[0], Value: -0.1}, {StatBin: bins[1], Value: 0}},
		Aligned:              true,
	}, nil
}

func newFake() *fakeComparer {
	return &fakeComparer{
		seasons: []int{2022, 2021},
		teams:   []string{"Penn State", "Ohio State", "Iowa"},
	}
}

var testDefaults = Defaults{TeamOne: "Penn State", TeamTwo: "Ohio State", Top: 10}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, New(newFake(), testDefaults, false), "/health")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestListSeasonsAndTeams(t *testing.T) {
	s := New(newFake(), testDefaults, false)

	rec := get(t, s, "/api/seasons")
	var seasons struct{ Seasons []int }
	if err := json.Unmarshal(rec.Body.Bytes(), &seasons); err != nil {
		t.Fatalf("decode seasons: %v", err)
	}
	if len(seasons.Seasons) != 2 || seasons.Seasons[0] != 2022 {
		t.Errorf("unexpected seasons %v", seasons.Seasons)
	}

	rec = get(t, s, "/api/teams?exclude=Iowa")
	var teams struct{ Teams []string }
	if err := json.Unmarshal(rec.Body.Bytes(), &teams); err != nil {
		t.Fatalf("decode teams: %v", err)
	}
	if len(teams.Teams) != 2 {
		t.Errorf("expected Iowa excluded, got %v", teams.Teams)
	}
}

func TestCompare(t *testing.T) {
	f := newFake()
	s := New(f, testDefaults, false)

	rec := get(t, s, "/api/compare?season=2022&team_one=Iowa&team_two=Penn+State&top=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var doc export.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.TeamOne != "Iowa" || doc.TeamTwo != "Penn State" || doc.TeamOneCarries != 100 {
		t.Errorf("unexpected document %+v", doc)
	}
	if f.lastTop != 3 {
		t.Errorf("top: want 3, got %d", f.lastTop)
	}
}

func TestCompare_Defaults(t *testing.T) {
	f := newFake()
	rec := get(t, New(f, testDefaults, false), "/api/compare")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	want := model.Selection{Season: 2022, TeamOne: "Penn State", TeamTwo: "Ohio State"}
	if f.lastSel != want || f.lastTop != 10 {
		t.Errorf("defaults: got %+v top=%d", f.lastSel, f.lastTop)
	}
}

func TestCompare_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		want   int
	}{
		{"same team", "/api/compare?team_one=Iowa&team_two=Iowa", nil, http.StatusBadRequest},
		{"bad season", "/api/compare?season=twenty", nil, http.StatusBadRequest},
		{"bad top", "/api/compare?top=-1", nil, http.StatusBadRequest},
		{"load failure", "/api/compare?season=2022", errors.New("fetch failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			f.err = tt.err
			rec := get(t, New(f, testDefaults, false), tt.target)
			if rec.Code != tt.want {
				t.Errorf("status: want %d, got %d (%s)", tt.want, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("expected error body, got %s", rec.Body.String())
			}
		})
	}
}

func TestCharts(t *testing.T) {
	s := New(newFake(), testDefaults, false)
	for _, name := range []string{"shares", "differences", "cumulative", "cumulative-difference"} {
		rec := get(t, s, "/api/charts/"+name+".png?season=2022")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d (%s)", name, rec.Code, rec.Body.String())
			continue
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type %q", name, ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s: body is not a PNG", name)
		}
	}

	if rec := get(t, s, "/api/charts/pie.png"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown chart: want 404, got %d", rec.Code)
	}
	if rec := get(t, s, "/api/charts/shares.png?season=1999"); rec.Code != http.StatusNotFound {
		t.Errorf("empty selection chart: want 404, got %d", rec.Code)
	}
}

func connectMCP(t *testing.T, f *fakeComparer) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()

	if _, err := NewMCPServer(f, testDefaults).Connect(ctx, serverT, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })
	return cs
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestMCPTools(t *testing.T) {
	f := newFake()
	cs := connectMCP(t, f)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "list_seasons", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("list_seasons: %v", err)
	}
	if !strings.Contains(toolText(t, res), "2022") {
		t.Errorf("list_seasons: %s", toolText(t, res))
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "list_teams", Arguments: map[string]any{"exclude": "Penn State"}})
	if err != nil {
		t.Fatalf("list_teams: %v", err)
	}
	if strings.Contains(toolText(t, res), "Penn State") {
		t.Errorf("list_teams should exclude Penn State: %s", toolText(t, res))
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "compare_teams", Arguments: map[string]any{"team_two": "Iowa"}})
	if err != nil {
		t.Fatalf("compare_teams: %v", err)
	}
	if res.IsError {
		t.Fatalf("compare_teams returned error: %s", toolText(t, res))
	}
	var doc export.Document
	if err := json.Unmarshal([]byte(toolText(t, res)), &doc); err != nil {
		t.Fatalf("decode compare_teams: %v", err)
	}
	if doc.Season != 2022 || doc.TeamOne != "Penn State" || doc.TeamTwo != "Iowa" {
		t.Errorf("unexpected selection in %+v", doc)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "compare_teams", Arguments: map[string]any{"team_one": "Iowa", "team_two": "Iowa"}})
	if err != nil {
		t.Fatalf("compare_teams: %v", err)
	}
	if !res.IsError {
		t.Error("same-team comparison should be a tool error")
	}
}
