package sync_test

import (
	"errors"
	"testing"

	"github.com/fencerfight/tourney/src/app/sync"
	"github.com/fencerfight/tourney/src/app/tournament"
	"github.com/fencerfight/tourney/src/domain/fighter"
	"github.com/fencerfight/tourney/src/domain/shared"
)

type mockSender struct {
	sendFunc func(data []byte) error
	sent     [][]byte
}

func (m *mockSender) Send(data []byte) error {
	m.sent = append(m.sent, data)
	if m.sendFunc != nil {
		return m.sendFunc(data)
	}
	return nil
}

func newHub(t *testing.T) (*sync.Hub, *tournament.Service) {
	t.Helper()
	svc := tournament.NewService(tournament.Settings{})
	return sync.NewHub(svc, sync.RoleServer, nil), svc
}

func TestHub_HandleData_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		wantErr error
	}{
		{
			name:    "malformed json",
			raw:     []byte("{not json"),
			wantErr: sync.ErrMalformedMessage,
		},
		{
			name:    "unknown kind",
			raw:     []byte(`{"kind":"mystery"}`),
			wantErr: sync.ErrUnknownKind,
		},
		{
			name:    "full sync without state",
			raw:     []byte(`{"kind":"full-sync"}`),
			wantErr: sync.ErrMalformedMessage,
		},
		{
			name:    "pool sync without slice",
			raw:     []byte(`{"kind":"pool"}`),
			wantErr: sync.ErrMalformedMessage,
		},
		{
			name:    "negative pool index",
			raw:     []byte(`{"kind":"pool","poolIndex":-1,"pool":{"participants":null,"fighterPairs":null,"duels":null,"playoffEligible":false}}`),
			wantErr: sync.ErrMalformedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub, svc := newHub(t)
			var notices []string
			hub.OnNotice(func(msg string) { notices = append(notices, msg) })
			sender := &mockSender{}
			hub.Register("conn-1", "", sender)

			err := hub.HandleData("conn-1", tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("HandleData() error = %v, want %v", err, tt.wantErr)
			}
			if len(notices) != 1 {
				t.Errorf("Expected one operator notice, got %d", len(notices))
			}
			if hub.ConnCount() != 1 {
				t.Error("Expected the connection to stay registered after a bad message")
			}
			if svc.PoolCount() != 1 {
				t.Error("Expected local state untouched by a rejected message")
			}
		})
	}
}

func TestHub_HandleData_FullSync(t *testing.T) {
	hub, svc := newHub(t)

	remote := tournament.NewService(tournament.Settings{})
	remote.AddPool()
	if _, err := remote.AddFighter(1, "Anna", fighter.Female); err != nil {
		t.Fatalf("AddFighter() error = %v", err)
	}
	snap := remote.Snapshot()
	raw, err := sync.Encode(&sync.Envelope{Kind: sync.KindFullSync, State: &snap})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if err := hub.HandleData("conn-1", raw); err != nil {
		t.Fatalf("HandleData() error = %v", err)
	}
	if svc.PoolCount() != 2 {
		t.Fatalf("Expected 2 pools after full sync, got %d", svc.PoolCount())
	}
	view, _ := svc.PoolView(1)
	if len(view.Fighters) != 1 || view.Fighters[0].Name != "Anna" {
		t.Errorf("Expected the synced roster, got %+v", view.Fighters)
	}
}

func TestHub_HandleData_PoolSync(t *testing.T) {
	hub, svc := newHub(t)

	anna, _ := fighter.NewParticipant("Anna", fighter.Female)
	index := 2
	raw, err := sync.Encode(&sync.Envelope{
		Kind:      sync.KindPoolSync,
		PoolIndex: &index,
		Pool:      &tournament.PoolSlice{Fighters: []fighter.Participant{anna}},
	})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if err := hub.HandleData("conn-1", raw); err != nil {
		t.Fatalf("HandleData() error = %v", err)
	}
	if svc.PoolCount() != 3 {
		t.Fatalf("Expected the pool list to grow to 3, got %d", svc.PoolCount())
	}
	view, _ := svc.PoolView(2)
	if len(view.Fighters) != 1 || view.Fighters[0].Name != "Anna" {
		t.Errorf("Expected the synced pool slice, got %+v", view.Fighters)
	}
}

func TestHub_RequestSync_ResolvesByConnThenToken(t *testing.T) {
	hub, _ := newHub(t)
	direct := &mockSender{}
	fallback := &mockSender{}
	hub.Register("conn-direct", "", direct)
	hub.Register("conn-old", "token-abc", fallback)

	request, err := sync.Encode(&sync.Envelope{Kind: sync.KindRequestSync})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := hub.HandleData("conn-direct", request); err != nil {
		t.Fatalf("HandleData() error = %v", err)
	}
	if len(direct.sent) != 1 {
		t.Fatalf("Expected the full sync on the requesting connection, got %d messages", len(direct.sent))
	}
	env, err := sync.Decode(direct.sent[0])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if env.Kind != sync.KindFullSync || env.State == nil {
		t.Errorf("Expected a full-sync answer, got kind %q", env.Kind)
	}

	// An unknown transport identity falls back to the client token.
	tokenReq, _ := sync.Encode(&sync.Envelope{
		Kind:  sync.KindRequestSync,
		Token: shared.ClientToken("token-abc"),
	})
	if err := hub.HandleData("conn-reconnected", tokenReq); err != nil {
		t.Fatalf("HandleData() error = %v", err)
	}
	if len(fallback.sent) != 1 {
		t.Errorf("Expected the token fallback target to receive the sync, got %d messages", len(fallback.sent))
	}

	// Neither identity known: the request is rejected.
	unknownReq, _ := sync.Encode(&sync.Envelope{
		Kind:  sync.KindRequestSync,
		Token: shared.ClientToken("token-missing"),
	})
	if err := hub.HandleData("conn-ghost", unknownReq); !errors.Is(err, sync.ErrNoConnection) {
		t.Errorf("HandleData() from unknown party error = %v, want ErrNoConnection", err)
	}
}

func TestHub_SyncAll(t *testing.T) {
	hub, _ := newHub(t)

	if err := hub.SyncAll(); !errors.Is(err, sync.ErrNoConnection) {
		t.Fatalf("SyncAll() without peers error = %v, want ErrNoConnection", err)
	}

	first := &mockSender{}
	second := &mockSender{}
	hub.Register("conn-1", "", first)
	hub.Register("conn-2", "", second)

	if err := hub.SyncAll(); err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if len(first.sent) != 1 || len(second.sent) != 1 {
		t.Errorf("Expected every peer to receive the state, got %d and %d",
			len(first.sent), len(second.sent))
	}

	hub.Unregister("conn-2")
	if err := hub.SyncAll(); err != nil {
		t.Fatalf("SyncAll() after unregister error = %v", err)
	}
	if len(second.sent) != 1 {
		t.Error("Expected the discarded connection to receive nothing")
	}
}

func TestHub_SyncPool(t *testing.T) {
	hub, svc := newHub(t)
	if _, err := svc.AddFighter(0, "Anna", fighter.Male); err != nil {
		t.Fatalf("AddFighter() error = %v", err)
	}
	sender := &mockSender{}
	hub.Register("conn-1", "", sender)

	if err := hub.SyncPool(0); err != nil {
		t.Fatalf("SyncPool() error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected one message, got %d", len(sender.sent))
	}
	env, err := sync.Decode(sender.sent[0])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if env.Kind != sync.KindPoolSync || env.PoolIndex == nil || *env.PoolIndex != 0 {
		t.Errorf("Expected a pool sync for index 0, got %+v", env)
	}
	if env.Pool == nil || len(env.Pool.Fighters) != 1 {
		t.Errorf("Expected the pool slice carried, got %+v", env.Pool)
	}

	if err := hub.SyncPool(7); !errors.Is(err, tournament.ErrNoSuchPool) {
		t.Errorf("SyncPool(7) error = %v, want ErrNoSuchPool", err)
	}
}

func TestHub_ObserverCounts(t *testing.T) {
	hub, _ := newHub(t)
	type observed struct {
		kind string
		ok   bool
	}
	var seen []observed
	hub.OnMessage(func(kind string, ok bool) {
		seen = append(seen, observed{kind: kind, ok: ok})
	})

	_ = hub.HandleData("conn-1", []byte("{broken"))
	snap := tournament.NewService(tournament.Settings{}).Snapshot()
	raw, _ := sync.Encode(&sync.Envelope{Kind: sync.KindFullSync, State: &snap})
	_ = hub.HandleData("conn-1", raw)

	want := []observed{
		{kind: "invalid", ok: false},
		{kind: "full-sync", ok: true},
	}
	if len(seen) != len(want) {
		t.Fatalf("Expected %d observations, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Observation %d = %+v, want %+v", i, seen[i], want[i])
		}
	}
}
