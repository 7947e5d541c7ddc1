package config

import (
	"errors"
	"testing"
	"time"
)

func TestSettingsFoldKeys(t *testing.T) {
	s, err := newSettings(map[interface{}]interface{}{
		"connect_timeout": 1500,
		"Read-Timeout":    "2s",
		"totalrequest":    float64(40),
	})
	if err != nil {
		t.Fatalf("newSettings() error = %v", err)
	}

	var connect, read time.Duration
	var total int
	if err := errors.Join(
		s.millis(&connect, "connectTimeout"),
		s.millis(&read, "readTimeout"),
		s.integer(&total, "totalRequest"),
	); err != nil {
		t.Fatalf("setters error = %v", err)
	}
	if connect != 1500*time.Millisecond || read != 2*time.Second || total != 40 {
		t.Errorf("connect=%v read=%v total=%d", connect, read, total)
	}
}

func TestSettingsMillis(t *testing.T) {
	tests := []struct {
		input interface{}
		want  time.Duration
	}{
		{1500, 1500 * time.Millisecond},
		{int64(30000), 30 * time.Second},
		{float64(250), 250 * time.Millisecond},
		{"2000", 2 * time.Second},
		{"5s", 5 * time.Second},
		{"150ms", 150 * time.Millisecond},
	}

	for _, tt := range tests {
		got := time.Minute
		if err := (settings{"timeout": tt.input}).millis(&got, "timeout"); err != nil {
			t.Errorf("millis(%v) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("millis(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}

	for _, bad := range []interface{}{"soon", float64(1.5), true} {
		var got time.Duration
		if err := (settings{"timeout": bad}).millis(&got, "timeout"); err == nil {
			t.Errorf("millis(%v) expected error", bad)
		}
	}
}

func TestSettingsLeaveAbsentKeysAlone(t *testing.T) {
	s := settings{}
	n, b, text := 7, true, "keep"
	if err := errors.Join(s.integer(&n, "concurrency"), s.boolean(&b, "keepAlive"), s.text(&text, "method")); err != nil {
		t.Fatalf("setters error = %v", err)
	}
	if n != 7 || !b || text != "keep" {
		t.Errorf("absent keys changed values: %d %v %q", n, b, text)
	}
}

func TestSettingsBoolean(t *testing.T) {
	tests := []struct {
		input   interface{}
		want    bool
		wantErr bool
	}{
		{true, true, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
		{1, false, true},
	}
	for _, tt := range tests {
		var got bool
		err := (settings{"keepalive": tt.input}).boolean(&got, "keepAlive")
		if (err != nil) != tt.wantErr {
			t.Errorf("boolean(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("boolean(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSettingsURLs(t *testing.T) {
	var urls []string
	s := settings{"url": "http://single.example.com"}
	if err := s.urls(&urls, "urls", "url"); err != nil {
		t.Fatalf("urls() error = %v", err)
	}
	s = settings{"urls": []interface{}{" http://a/ ", "", "http://b/"}}
	if err := s.urls(&urls, "urls", "url"); err != nil {
		t.Fatalf("urls() error = %v", err)
	}
	want := []string{"http://single.example.com", "http://a/", "http://b/"}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
	if err := (settings{"urls": 42}).urls(&urls, "urls"); err == nil {
		t.Error("urls(42) expected error")
	}
}
