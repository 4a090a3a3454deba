package rake

import (
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/rake/pkg/rake/store"
)

func storedOverlay(t *testing.T, s store.Store, token string) map[string]any {
	t.Helper()
	payload, err := s.Get(store.Namespace(token), store.KeySuperProperties)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &out))
	return out
}

func TestRegisterSuperProperties_Overwrites(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{"plan": "free", "tier": 1})
	c.RegisterSuperProperties(map[string]any{"plan": "pro"})

	assert.Equal(t, map[string]any{"plan": "pro", "tier": float64(1)}, c.SuperProperties())
	assert.Equal(t, c.SuperProperties(), storedOverlay(t, h.store, testToken))
}

func TestRegisterSuperPropertiesOnce_KeepsExisting(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{"plan": "free"})
	c.RegisterSuperPropertiesOnce(map[string]any{"plan": "pro", "campaign": "spring"})

	props := c.SuperProperties()
	assert.Equal(t, "free", props["plan"])
	assert.Equal(t, "spring", props["campaign"])
	assert.Equal(t, props, storedOverlay(t, h.store, testToken))
}

func TestUnregisterSuperProperty(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{"plan": "free", "campaign": "spring"})
	c.UnregisterSuperProperty("campaign")
	c.UnregisterSuperProperty("missing")

	assert.Equal(t, map[string]any{"plan": "free"}, c.SuperProperties())

	reloaded := h.restart(t)
	assert.Equal(t, map[string]any{"plan": "free"}, reloaded.SuperProperties())
}

func TestClearSuperProperties(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{"plan": "free"})
	c.ClearSuperProperties()

	assert.Empty(t, c.SuperProperties())
	assert.Empty(t, storedOverlay(t, h.store, testToken))

	c.Track(map[string]any{})
	assert.NotContains(t, h.lastProps(t), "plan")
}

func TestSuperProperties_SurviveRestart(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{
		"plan":    "pro",
		"seats":   5,
		"flags":   []string{"beta", "dark"},
		"profile": map[string]any{"age": 31, "tags": []any{"a", true}},
		"none":    nil,
	})

	reloaded := h.restart(t)
	assert.Equal(t, c.SuperProperties(), reloaded.SuperProperties())
	assert.Equal(t, []any{"beta", "dark"}, reloaded.SuperProperties()["flags"])
}

func TestSuperProperties_PerToken(t *testing.T) {
	h := newHarness(t)
	a := h.reg.GetInstance("app", "tok-a", false)
	b := h.reg.GetInstance("app", "tok-b", false)

	a.RegisterSuperProperties(map[string]any{"plan": "pro"})

	assert.Equal(t, map[string]any{"plan": "pro"}, a.SuperProperties())
	assert.Empty(t, b.SuperProperties())
}

func TestSuperProperties_CorruptDocumentResets(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "{plan: free"},
		{name: "array", payload: `["plan"]`},
		{name: "null", payload: "null"},
		{name: "string", payload: `"plan"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store.NewMemoryStore()
			require.NoError(t, s.Put(store.Namespace(testToken), store.KeySuperProperties, tt.payload))

			h := newHarness(t, WithStore(s))
			c := h.client()

			assert.Empty(t, c.SuperProperties())

			payload, err := s.Get(store.Namespace(testToken), store.KeySuperProperties)
			require.NoError(t, err)
			assert.Equal(t, "{}", payload)

			c.RegisterSuperProperties(map[string]any{"plan": "free"})
			assert.Equal(t, map[string]any{"plan": "free"}, storedOverlay(t, s, testToken))
		})
	}
}

func TestRegisterSuperProperties_SkipsUnencodableValues(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	c.RegisterSuperProperties(map[string]any{
		"plan":    "pro",
		"handler": func() {},
		"ch":      make(chan int),
		"ratio":   math.NaN(),
	})

	assert.Equal(t, map[string]any{"plan": "pro"}, c.SuperProperties())
	assert.Equal(t, map[string]any{"plan": "pro"}, storedOverlay(t, h.store, testToken))
}

func TestRegisterSuperProperties_WritesThrough(t *testing.T) {
	h := newHarness(t)
	c := h.client()
	before := h.store.Puts()

	c.RegisterSuperProperties(map[string]any{"a": 1})
	c.RegisterSuperPropertiesOnce(map[string]any{"a": 2})
	c.UnregisterSuperProperty("a")
	c.ClearSuperProperties()

	assert.Equal(t, before+4, h.store.Puts())
}

func TestRegisterSuperProperties_StoreFailureKeepsMemoryState(t *testing.T) {
	fs := &failingStore{Store: store.NewMemoryStore(), putErr: errDiskFull}
	logger, buf := captureLogger()
	h := newHarness(t, WithStore(fs), WithLogger(logger))
	c := h.client()

	assert.NotPanics(t, func() {
		c.RegisterSuperProperties(map[string]any{"plan": "pro"})
	})

	assert.Equal(t, map[string]any{"plan": "pro"}, c.SuperProperties())
	assert.Contains(t, buf.String(), "disk full")

	c.Track(map[string]any{"event": "open"})
	assert.Equal(t, "pro", h.lastProps(t)["plan"])
}

func TestClearPreferences(t *testing.T) {
	h := newHarness(t)
	c := h.client()
	ns := store.Namespace(testToken)

	c.RegisterSuperProperties(map[string]any{"plan": "pro"})
	require.NoError(t, h.store.Put(ns, "other", "value"))

	c.ClearPreferences()

	assert.Empty(t, c.SuperProperties())
	_, err := h.store.Get(ns, "other")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSuperProperties_ReturnsCopy(t *testing.T) {
	h := newHarness(t)
	c := h.client()
	c.RegisterSuperProperties(map[string]any{"profile": map[string]any{"age": 31}})

	props := c.SuperProperties()
	props["plan"] = "hacked"
	props["profile"].(map[string]any)["age"] = 99

	assert.Equal(t, map[string]any{"profile": map[string]any{"age": float64(31)}}, c.SuperProperties())
}

func TestRegisterSuperProperties_CallerMapNotRetained(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	profile := map[string]any{"age": 31}
	c.RegisterSuperProperties(map[string]any{"profile": profile})
	profile["age"] = 99

	assert.Equal(t, map[string]any{"age": float64(31)}, c.SuperProperties()["profile"])
}

func TestSuperProperties_ConcurrentAccess(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.RegisterSuperProperties(map[string]any{fmt.Sprintf("k%d", i): i})
		}(i)
		go func() {
			defer wg.Done()
			c.Track(map[string]any{"event": "tick"})
		}()
	}
	wg.Wait()

	assert.Len(t, c.SuperProperties(), 20)
	assert.Len(t, h.queue.Documents(), 20)

	reloaded := h.restart(t)
	assert.Equal(t, c.SuperProperties(), reloaded.SuperProperties())
}
