package domain

import "testing"

func TestParsePersona(t *testing.T) {
	tests := []struct {
		in     string
		want   Persona
		wantOK bool
	}{
		{"professional", PersonaProfessional, true},
		{"companion", PersonaCompanion, true},
		{"yap", PersonaYap, true},
		{"", PersonaProfessional, false},
		{"therapist", PersonaProfessional, false},
	}

	for _, tt := range tests {
		got, ok := ParsePersona(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePersona(%q) = (%v, %v), want (%v, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPersonaPrompt_NeverEmpty(t *testing.T) {
	for _, p := range []Persona{PersonaProfessional, PersonaCompanion, PersonaYap, Persona(99)} {
		if p.Prompt() == "" {
			t.Errorf("persona %v has empty prompt", p)
		}
	}
}

func TestPersonaString_RoundTrip(t *testing.T) {
	for _, p := range []Persona{PersonaProfessional, PersonaCompanion, PersonaYap} {
		got, ok := ParsePersona(p.String())
		if !ok || got != p {
			t.Errorf("ParsePersona(%q) = (%v, %v), want (%v, true)", p.String(), got, ok, p)
		}
	}
}
