package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/pack"
	"github.com/danmuck/vhalctl/internal/protocol/session"
	"github.com/danmuck/vhalctl/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (c *fakeConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *fakeConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func queue(t *testing.T, c *fakeConn, msg *protocol.InjectionMessage) {
	t.Helper()
	require.NoError(t, protocol.Write(&c.in, msg))
}

func bootstrapped(t *testing.T) (*session.Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	queue(t, conn, &protocol.InjectionMessage{Type: protocol.GetConfigAllResp, Configs: []protocol.PropConfig{
		{Prop: 0x11400000, ValueType: protocol.TypeInt32},
		{Prop: 0x11510000, ValueType: protocol.TypeInt64Vec},
	}})
	sess := session.New(conn)
	require.NoError(t, sess.Bootstrap())
	return sess, conn
}

func TestReceiveLoopRecordsUntilClosed(t *testing.T) {
	testlog.Start(t)
	sess, conn := bootstrapped(t)
	ok := protocol.ResultOK
	queue(t, conn, &protocol.InjectionMessage{Type: protocol.GetPropertyResp, Status: &ok, Values: []protocol.PropValue{{
		Prop:        0x11400000,
		ValueType:   protocol.TypeInt32,
		AreaID:      protocol.Int32Ptr(1),
		Int32Values: []int32{42},
	}}})
	queue(t, conn, &protocol.InjectionMessage{Type: protocol.GetPropertyResp, Values: []protocol.PropValue{{
		Prop:        0x11510000,
		ValueType:   protocol.TypeInt64Vec,
		Int64Values: pack.String("hi"),
	}}})

	m := New(sess, Options{})
	require.NoError(t, m.ReceiveLoop(context.Background()))

	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "GET_PROPERTY_RESP", events[0].MsgType)
	assert.Equal(t, "RESULT_OK", events[0].Status)
	require.Len(t, events[0].Values, 1)
	assert.Equal(t, "0x11400000", events[0].Values[0].Prop)
	assert.Empty(t, events[0].Warning)
	assert.Equal(t, "hi", events[1].Values[0].Text)
}

func TestRecordFlagsSchemaViolations(t *testing.T) {
	testlog.Start(t)
	sess, _ := bootstrapped(t)
	m := New(sess, Options{})
	ev := m.Record(&protocol.InjectionMessage{Type: protocol.SetPropertyCmd})
	assert.Contains(t, ev.Warning, "missing required section")

	ev = m.Record(&protocol.InjectionMessage{Type: protocol.GetPropertyResp, Values: []protocol.PropValue{{
		Prop:      0x11400000,
		ValueType: protocol.TypeInt32,
	}}})
	require.Len(t, ev.Values, 1)
	assert.NotEmpty(t, ev.Values[0].Error, "scalar without a value must not decode")
}

func TestHistoryIsBounded(t *testing.T) {
	testlog.Start(t)
	sess, _ := bootstrapped(t)
	m := New(sess, Options{History: 2})
	for _, mt := range []protocol.MsgType{protocol.GetConfigAllCmd, protocol.GetPropertyAllCmd, protocol.SetPropertyResp} {
		m.Record(&protocol.InjectionMessage{Type: mt})
	}
	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "GET_PROPERTY_ALL_CMD", events[0].MsgType)
	assert.Equal(t, "SET_PROPERTY_RESP", events[1].MsgType)
}

func TestHTTPRoutes(t *testing.T) {
	testlog.Start(t)
	sess, _ := bootstrapped(t)
	m := New(sess, Options{CorsOrigins: []string{"http://localhost:3000"}})
	m.Record(&protocol.InjectionMessage{Type: protocol.SetPropertyResp})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ready", health["state"])
	assert.Equal(t, sess.ID(), health["session"])

	rec = get("/registry")
	require.Equal(t, http.StatusOK, rec.Code)
	var reg struct {
		Properties []map[string]string `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	require.Len(t, reg.Properties, 2)
	assert.Equal(t, "0x11400000", reg.Properties[0]["prop"])
	assert.Equal(t, "INT32", reg.Properties[0]["value_type"])

	rec = get("/events")
	require.Equal(t, http.StatusOK, rec.Code)
	var events struct {
		Total  int     `json:"total"`
		Events []Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Equal(t, 1, events.Total)

	assert.Equal(t, http.StatusOK, get("/metrics").Code)
}

func TestRunStopsWhenPeerCloses(t *testing.T) {
	testlog.Start(t)
	client, server := net.Pipe()

	go func() {
		if _, err := protocol.Decode(server); err != nil {
			return
		}
		_ = protocol.Write(server, &protocol.InjectionMessage{Type: protocol.GetConfigAllResp, Configs: []protocol.PropConfig{
			{Prop: 0x11400000, ValueType: protocol.TypeInt32},
		}})
		_ = protocol.Write(server, &protocol.InjectionMessage{Type: protocol.SetPropertyResp})
		_ = server.Close()
	}()

	sess := session.New(client)
	require.NoError(t, sess.Bootstrap())
	m := New(sess, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Run(ctx, "", client))
	assert.Len(t, m.Events(), 1)
}
