package locale

import "testing"

func TestCodesOrderIsStable(t *testing.T) {
	want := []string{"uz", "ru", "en"}
	got := Codes()
	if len(got) != len(want) {
		t.Fatalf("Codes len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Codes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetSupportedCode(t *testing.T) {
	entry, ok := Get("ru")
	if !ok {
		t.Fatal("expected ru to be supported")
	}
	if entry.Code != "ru" {
		t.Fatalf("entry.Code = %q, want %q", entry.Code, "ru")
	}
	if entry.Label == "" || entry.Greeting == "" || entry.Help == "" || entry.Processing == "" {
		t.Fatalf("entry has empty fields: %+v", entry)
	}
}

func TestGetUnsupportedCode(t *testing.T) {
	if _, ok := Get("fr"); ok {
		t.Fatal("expected fr to be unsupported")
	}
	if Supported("fr") {
		t.Fatal("Supported(fr) = true, want false")
	}
}

func TestDefaultIsSupported(t *testing.T) {
	entry := Default()
	if entry.Code != DefaultCode {
		t.Fatalf("Default().Code = %q, want %q", entry.Code, DefaultCode)
	}
	if !Supported(DefaultCode) {
		t.Fatalf("default code %q not in supported set", DefaultCode)
	}
}

func TestAllEntriesComplete(t *testing.T) {
	for _, code := range Codes() {
		entry, ok := Get(code)
		if !ok {
			t.Fatalf("code %q listed but not resolvable", code)
		}
		if entry.Label == "" || entry.Greeting == "" || entry.Help == "" || entry.Processing == "" {
			t.Fatalf("entry %q has empty fields: %+v", code, entry)
		}
	}
}
