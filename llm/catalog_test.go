package llm

import "testing"

func TestGetModelInfoByID(t *testing.T) {
	info := GetModelInfo("gpt-4o-mini")
	if info == nil {
		t.Fatal("expected catalog entry for gpt-4o-mini")
	}
	if info.Platform != PlatformOpenAI {
		t.Errorf("expected openai platform, got %q", info.Platform)
	}
}

func TestGetModelInfoByAlias(t *testing.T) {
	info := GetModelInfo("sonnet")
	if info == nil {
		t.Fatal("expected alias lookup to resolve")
	}
	if info.ID != "claude-sonnet-4-5" {
		t.Errorf("expected claude-sonnet-4-5, got %q", info.ID)
	}
}

func TestGetModelInfoUnknown(t *testing.T) {
	if info := GetModelInfo("made-up-model"); info != nil {
		t.Errorf("expected nil for unknown model, got %+v", info)
	}
}

func TestListModelsByPlatform(t *testing.T) {
	models := ListModels(PlatformAnthropic)
	if len(models) == 0 {
		t.Fatal("expected anthropic models")
	}
	for _, m := range models {
		if m.Platform != PlatformAnthropic {
			t.Errorf("unexpected platform %q in anthropic listing", m.Platform)
		}
	}

	all := ListModels("")
	if len(all) != len(Models) {
		t.Errorf("expected full catalog, got %d of %d", len(all), len(Models))
	}
}

func TestDefaultModel(t *testing.T) {
	if got := DefaultModel(PlatformAnthropic); GetModelInfo(got) == nil {
		t.Errorf("anthropic default %q not in catalog", got)
	}
	if got := DefaultModel(PlatformOpenAI); GetModelInfo(got) == nil {
		t.Errorf("openai default %q not in catalog", got)
	}
}

func TestModelOutputVariants(t *testing.T) {
	structured := StructuredOutput([]byte(`{"a":1}`))
	if string(structured.JSON()) != `{"a":1}` {
		t.Errorf("structured JSON mismatch: %s", structured.JSON())
	}

	raw := RawOutput(`{"b":2}`)
	if string(raw.JSON()) != `{"b":2}` {
		t.Errorf("raw JSON mismatch: %s", raw.JSON())
	}
}

func TestTrimFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := TrimFences(tc.in); got != tc.want {
			t.Errorf("TrimFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
