package domain

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"OpenAI.COM", "openai.com", false},
		{" https://OpenAI.COM/ ", "openai.com", false},
		{"openai.com:443", "openai.com", false},
		{"openai.com.", "openai.com", false},
		{"", "", true},
		{"localhost", "", true},
		{"foo..com", "", true},
		{"-bad.com", "", true},
		{"bad-.com", "", true},
	}

	for _, tc := range cases {
		got, err := Normalize(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Normalize(%q): expected error, got none (got=%q)", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Normalize(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Normalize(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	t.Parallel()

	for _, d := range []string{"example.com", "example.info", "example.net", "example.org", "example.us", "sub.example.com"} {
		if !IsSupported(d) {
			t.Fatalf("IsSupported(%q)=false, want true", d)
		}
	}
	for _, d := range []string{"example.io", "example.co.uk", "examplecom", "example.", "com"} {
		if IsSupported(d) {
			t.Fatalf("IsSupported(%q)=true, want false", d)
		}
	}
}

func TestParseNameservers(t *testing.T) {
	t.Parallel()

	got, err := ParseNameservers(" ns1.example.net , NS2.example.net.,, ns1.example.net ")
	if err != nil {
		t.Fatalf("ParseNameservers: %v", err)
	}
	if len(got) != 2 || got[0] != "ns1.example.net" || got[1] != "ns2.example.net" {
		t.Fatalf("ParseNameservers=%v", got)
	}

	if _, err := ParseNameservers(" , "); err == nil {
		t.Fatalf("expected error for empty list")
	}
	if _, err := ParseNameservers("ns1.example.net, bad host"); err == nil {
		t.Fatalf("expected error for invalid host")
	}
}
