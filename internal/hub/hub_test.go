package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wisefido-vitals/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func startTestHub(t *testing.T, recent []domain.MedicalRecord) (*Hub, *httptest.Server) {
	t.Helper()

	snapshot := domain.VitalSnapshot{
		BPM:              72,
		SpO2:             97,
		ConnectionStatus: domain.ConnectionConnected,
	}
	h := NewHub(
		func() domain.VitalSnapshot { return snapshot },
		func(n int) []domain.MedicalRecord {
			if len(recent) > n {
				return recent[:n]
			}
			return recent
		},
		zap.NewNop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(h, conn, zap.NewNop())
		go client.WritePump()
		go client.ReadPump()
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) testEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env testEnvelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestHub_ReplaysOnSubscribe(t *testing.T) {
	recent := []domain.MedicalRecord{
		{RecordID: "r2", Timestamp: "2026-08-24T11:00:00.000000"},
		{RecordID: "r1", Timestamp: "2026-08-24T10:00:00.000000"},
	}
	_, srv := startTestHub(t, recent)
	conn := dial(t, srv)

	env := readEnvelope(t, conn)
	assert.Equal(t, EventVitalSignsUpdate, env.Event)
	var snap domain.VitalSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 72.0, snap.BPM)

	env = readEnvelope(t, conn)
	assert.Equal(t, EventHistoryUpdate, env.Event)
	var records []domain.MedicalRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "r2", records[0].RecordID)
}

func TestHub_BroadcastsSnapshotToAllViewers(t *testing.T) {
	h, srv := startTestHub(t, nil)

	connA := dial(t, srv)
	connB := dial(t, srv)

	// drain the replay messages
	for _, conn := range []*websocket.Conn{connA, connB} {
		readEnvelope(t, conn)
		readEnvelope(t, conn)
	}

	h.PublishSnapshot(domain.VitalSnapshot{BPM: 80, ConnectionStatus: domain.ConnectionConnected})

	for _, conn := range []*websocket.Conn{connA, connB} {
		env := readEnvelope(t, conn)
		assert.Equal(t, EventVitalSignsUpdate, env.Event)
		var snap domain.VitalSnapshot
		require.NoError(t, json.Unmarshal(env.Data, &snap))
		assert.Equal(t, 80.0, snap.BPM)
	}
}

func TestHub_BroadcastsNewRecord(t *testing.T) {
	h, srv := startTestHub(t, nil)
	conn := dial(t, srv)
	readEnvelope(t, conn)
	readEnvelope(t, conn)

	h.PublishRecord(domain.MedicalRecord{RecordID: "rec-9", PatientID: "p1"})

	env := readEnvelope(t, conn)
	assert.Equal(t, EventNewVitalsRecord, env.Event)
	var rec domain.MedicalRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	assert.Equal(t, "rec-9", rec.RecordID)
}

func TestHub_PublishWithoutViewersDoesNotBlock(t *testing.T) {
	h, _ := startTestHub(t, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			h.PublishSnapshot(domain.VitalSnapshot{BPM: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked with no viewers connected")
	}
}
