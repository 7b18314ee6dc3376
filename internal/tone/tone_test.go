package tone

import (
	"strings"
	"testing"
)

func TestFreeTones(t *testing.T) {
	tones := FreeTones()
	if len(tones) != 3 {
		t.Fatalf("free tones = %d, want 3", len(tones))
	}
	for _, key := range tones {
		if !ValidFree(key) {
			t.Errorf("%s should be a valid free tone", key)
		}
		desc, err := FreeDescription(key)
		if err != nil || desc == "" {
			t.Errorf("FreeDescription(%s) = %q, %v", key, desc, err)
		}
	}
	if ValidFree("guan_yu") {
		t.Error("paid persona must not validate as a free tone")
	}
	if _, err := FreeDescription("solemn"); err == nil {
		t.Error("unknown free tone should error")
	}
}

func TestAngelPersonas(t *testing.T) {
	personas := AngelPersonas()
	if len(personas) != 10 {
		t.Fatalf("angel personas = %d, want 10", len(personas))
	}
	for _, key := range personas {
		if !ValidAngelPersona(key) {
			t.Errorf("%s should be a valid persona", key)
		}
	}
}

func TestAngelPersonaOrDefault(t *testing.T) {
	if got := AngelPersonaOrDefault("michael"); got != "michael" {
		t.Errorf("valid persona changed to %q", got)
	}
	// unknown keys fall back instead of rejecting
	if got := AngelPersonaOrDefault("zeus"); got != DefaultPaidAngel {
		t.Errorf("fallback = %q, want %q", got, DefaultPaidAngel)
	}
	if got := AngelPersonaOrDefault(""); got != DefaultPaidAngel {
		t.Errorf("empty key fallback = %q", got)
	}
}

func TestStyleDescription(t *testing.T) {
	if desc := StyleDescription(Friendly); !strings.Contains(desc, "朋友") {
		t.Errorf("friendly description = %q", desc)
	}
	if desc := StyleDescription("metatron"); !strings.Contains(desc, "梅塔特隆") {
		t.Errorf("metatron description = %q", desc)
	}
	// unknown falls through to the default archangel
	if desc := StyleDescription("unknown"); desc != StyleDescription(DefaultPaidAngel) {
		t.Errorf("unknown key description = %q", desc)
	}
}

func TestDeities(t *testing.T) {
	keys := Deities()
	if len(keys) != 9 {
		t.Fatalf("deities = %d, want 9", len(keys))
	}
	for _, key := range keys {
		d, ok := DeityByKey(key)
		if !ok {
			t.Errorf("DeityByKey(%s) missing", key)
			continue
		}
		if d.Name == "" || d.Style == "" || d.Greeting == "" {
			t.Errorf("deity %s incomplete: %+v", key, d)
		}
	}
}

func TestDeityOrDefault(t *testing.T) {
	d := DeityOrDefault("poseidon")
	if d.Key != DefaultDeity {
		t.Errorf("fallback deity = %q, want %q", d.Key, DefaultDeity)
	}
	d = DeityOrDefault("mazu")
	if d.Name != "媽祖" {
		t.Errorf("mazu name = %q", d.Name)
	}
}
