package binding

import "testing"

func TestInterpolate(t *testing.T) {
	data, err := ParseData(`{"singer":{"name":"Ann","parts":["lead","harmony"]},"year":2024}`)
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	cases := map[string]string{
		"by ${singer.name}":             "by Ann",
		"${singer.parts[1]} line":       "harmony line",
		"${ year }":                     "2024",
		"${missing.path} stays":         "${missing.path} stays",
		"${singer.parts[5]}":            "${singer.parts[5]}",
		"no placeholders":               "no placeholders",
		"${singer.name}/${singer.name}": "Ann/Ann",
	}
	for in, want := range cases {
		if got := Interpolate(in, data); got != want {
			t.Errorf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Interpolate("${x}", nil); got != "${x}" {
		t.Fatalf("nil data should keep placeholders, got %q", got)
	}
}

func TestInterpolateMap(t *testing.T) {
	data := map[string]any{"who": "choir"}
	in := map[string]string{"singer": "${who}", "lang": "en"}
	out := InterpolateMap(in, data)
	if out["singer"] != "choir" || out["lang"] != "en" {
		t.Fatalf("out = %v", out)
	}
	if in["singer"] != "${who}" {
		t.Fatalf("input map modified")
	}
	if InterpolateMap(nil, data) != nil {
		t.Fatalf("nil map should stay nil")
	}
}

func TestParseData(t *testing.T) {
	if v, err := ParseData("  "); v != nil || err != nil {
		t.Fatalf("blank data = %v, %v", v, err)
	}
	if _, err := ParseData("{bad"); err == nil {
		t.Fatalf("expected json error")
	}
}
