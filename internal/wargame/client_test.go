package wargame

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qjm-roster/internal/roster"
	"qjm-roster/internal/scenario"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", Options{RPS: 1000, Burst: 1000})
}

func TestCatalogFetchesGroundAndAir(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/qjm/get_units":
			w.Write([]byte(`[{"name":"Blue","units":[{"id":"1","name":"1st Div","sidc":"10031000001211000000","children":[{"id":"2","name":"1st Bde"}]}]}]`))
		case "/qjm/get_air_units":
			w.Write([]byte(`[{"name":"Blue","units":[{"id":"7","name":"Su-25"}]}]`))
		default:
			http.NotFound(w, r)
		}
	})

	cat, err := c.Catalog(context.Background())
	require.NoError(t, err)
	entries := cat.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "1", entries[1].ParentID)
	assert.Equal(t, "Blue-air", entries[2].Panel)
}

func TestCatalogRejectsDuplicateIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Blue","units":[{"id":"1","name":"a"}]}]`))
	})
	_, err := c.Catalog(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemoteCollaborator))
}

func TestGetPersonnelCountSendsIDs(t *testing.T) {
	var got map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/get_personnel", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"attackers": 12000, "defenders": 8000}`))
	})

	pc, err := c.GetPersonnelCount(context.Background(), []string{"U7"}, nil)
	require.NoError(t, err)
	assert.Equal(t, &PersonnelCount{Attackers: 12000, Defenders: 8000}, pc)
	assert.Equal(t, []string{"U7"}, got["attackers"])
	assert.NotNil(t, got["defenders"])
	assert.Empty(t, got["defenders"])
}

func TestSimulateBattleDecodesResult(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"powerRatio":1.5,"powerAtk":300000,"powerDef":200000,"atkPersCasualtyRate":0.04,"atkTankCasualtyRate":0.1,"defPersCasualtyRate":0.05,"defTankCasualtyRate":0.12,"advanceRate":{"km_per_day":4.2}}`))
	})
	p := scenario.Build(roster.Lineup{Attackers: []string{"U7"}, Defenders: []string{"U9"}}, scenario.Defaults())

	res, err := c.SimulateBattle(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, res.PowerRatio, 1e-9)
	assert.InDelta(t, 4.2, res.AdvanceRate["km_per_day"], 1e-9)
	assert.Equal(t, "rolling-mixed", body["terrain"])
	assert.Equal(t, []any{"U7"}, body["attackers"])
}

func TestStatusVariants(t *testing.T) {
	cases := []struct {
		body string
		want bool
	}{
		{`{"status": true}`, true},
		{`{"status": false}`, false},
		{`{"status": "committed"}`, true},
		{`{"status": "failure"}`, false},
		{`{}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			ok, err := c.CommitBattle(context.Background(), scenario.Build(roster.Lineup{}, scenario.Defaults()))
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestSaveAndExport(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"status": true}`))
	})
	ok, err := c.SaveScenarioState(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.ExportOrbatMapper(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"/save_scenario_state", "/export_orbatmapper"}, paths)
}

func TestGetFormationDetailsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get_formation/U%2F7", r.URL.RawPath)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "Formation not found"}`))
	})
	_, err := c.GetFormationDetails(context.Background(), "U/7")
	require.Error(t, err)

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Equal(t, "getFormationDetails", re.Op)
	assert.Contains(t, err.Error(), "Formation not found")
	assert.True(t, errors.Is(err, ErrRemoteCollaborator))
}

func TestGetFormationDetailsDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"7th Brigade","oli":123456.7,"faction":"Blue","personnel":4200,"sidc":"10031000001211000000","shortname":"7 Bde","unit_id":"U7"}`))
	})
	fd, err := c.GetFormationDetails(context.Background(), "U7")
	require.NoError(t, err)
	assert.Equal(t, "7th Brigade", fd.Name)
	assert.Equal(t, 4200, fd.Personnel)
	assert.InDelta(t, 123456.7, fd.OLI, 1e-6)
}

func TestUpdateFormation(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status": "success"}`))
	})
	require.NoError(t, c.UpdateFormation(context.Background(), "7th Brigade", 3900))
	assert.Equal(t, "7th Brigade", got["name"])
	assert.Equal(t, float64(3900), got["personnel"])
}

func TestNetworkFailureIsRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, Options{})
	_, err := c.ListUnits(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemoteCollaborator))
}

func TestMalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})
	_, err := c.GetPersonnelCount(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
