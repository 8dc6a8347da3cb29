package config

import "testing"

func TestParseArgs(t *testing.T) {
	base := SessionConfig{ResultLimit: DefaultResultLimit}
	tests := []struct {
		name      string
		args      []string
		want      SessionConfig
		source    string
		sourceSet bool
	}{
		{"no args", nil, SessionConfig{ResultLimit: 5}, "cfg-source", false},
		{"threshold only", []string{"0.4"}, SessionConfig{ResultLimit: 5, SimilarityThreshold: 0.4}, "cfg-source", false},
		{"threshold and limit", []string{"0.2", "3"}, SessionConfig{ResultLimit: 3, SimilarityThreshold: 0.2}, "cfg-source", false},
		{"all three", []string{"0", "3", "sk-key"}, SessionConfig{ResultLimit: 3}, "sk-key", true},
		{"blank source overrides", []string{"0", "3", ""}, SessionConfig{ResultLimit: 3}, "", true},
		{"unparsable threshold", []string{"abc", "2"}, SessionConfig{ResultLimit: 2}, "cfg-source", false},
		{"unparsable limit", []string{"0.1", "many"}, SessionConfig{ResultLimit: 5, SimilarityThreshold: 0.1}, "cfg-source", false},
		{"zero limit", []string{"0", "0"}, SessionConfig{ResultLimit: 5}, "cfg-source", false},
		{"negative limit", []string{"0", "-4"}, SessionConfig{ResultLimit: 5}, "cfg-source", false},
		{"NaN threshold", []string{"NaN"}, SessionConfig{ResultLimit: 5}, "cfg-source", false},
		{"negative threshold kept", []string{"-0.5"}, SessionConfig{ResultLimit: 5, SimilarityThreshold: -0.5}, "cfg-source", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, source, set := ParseArgs(tt.args, base, "cfg-source")
			if got != tt.want {
				t.Errorf("config = %+v, want %+v", got, tt.want)
			}
			if source != tt.source || set != tt.sourceSet {
				t.Errorf("source = %q (set=%v), want %q (set=%v)", source, set, tt.source, tt.sourceSet)
			}
		})
	}
}

func TestConfig_Session(t *testing.T) {
	cfg := &Config{Search: SearchConfig{DefaultLimit: 7, DefaultThreshold: 0.3}}
	s := cfg.Session()
	if s.ResultLimit != 7 || s.SimilarityThreshold != 0.3 {
		t.Errorf("Session() = %+v", s)
	}
	if !s.ThresholdActive() {
		t.Error("threshold 0.3 should be active")
	}
	if (&Config{}).Session().ResultLimit != DefaultResultLimit {
		t.Error("zero limit should fall back to default")
	}
}
