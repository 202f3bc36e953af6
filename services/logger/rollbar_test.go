package logsvc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkanmatematik/platform/core"
)

type fakeSession struct{ id string }

func (s fakeSession) Person() core.Person { return core.Person{ID: s.id, Name: "Ayşe"} }

func newTestLogger(buf *bytes.Buffer) *RollbarLogger {
	l := NewRollbarLogger(zerolog.New(buf), &core.Config{Env: "TEST"})
	l.Enable(false)
	return l
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := newTestLogger(new(bytes.Buffer))
	err := errors.New("boom")
	extra := map[string]interface{}{"course": "c1"}

	tests := []struct {
		name       string
		args       []interface{}
		wantArgs   []interface{}
		wantPerson *core.Person
	}{
		{name: "no args", wantArgs: []interface{}{"msg"}},
		{name: "error & extra", args: []interface{}{err, extra}, wantArgs: []interface{}{"msg", err, extra}},
		{name: "person", args: []interface{}{err, core.Person{ID: "u1"}}, wantArgs: []interface{}{"msg", err}, wantPerson: &core.Person{ID: "u1"}},
		{name: "personer", args: []interface{}{fakeSession{id: "u2"}}, wantArgs: []interface{}{"msg"}, wantPerson: &core.Person{ID: "u2", Name: "Ayşe"}},
		{name: "first person wins", args: []interface{}{core.Person{ID: "u1"}, fakeSession{id: "u2"}}, wantArgs: []interface{}{"msg"}, wantPerson: &core.Person{ID: "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, person := l.prepare("msg", tt.args)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantPerson, person)
		})
	}
}

func TestRollbarLogger_Error(t *testing.T) {
	buf := new(bytes.Buffer)
	l := newTestLogger(buf)

	l.Error("saving progress", errors.New("store down"), map[string]interface{}{"course": "c1"}, fakeSession{id: "u1"}, 42)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "saving progress", entry["message"])
	assert.Equal(t, "store down", entry["error"])
	assert.Equal(t, "c1", entry["course"])
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "42", entry["extra"])
}

func TestNewStdLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	zl := NewStdLogger(buf, &core.Config{Env: "PROD", AppName: "Berkan Matematik"})
	zl.Debug().Msg("hidden")
	zl.Info().Msg("shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "Berkan Matematik", entry["app"])
	assert.Contains(t, entry, "time")
}
