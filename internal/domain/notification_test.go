package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

func TestParseNotificationID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    domain.NotificationID
		wantErr error
	}{
		{"numeric", "42", "42", nil},
		{"negative numeric", "-7", "-7", nil},
		{"uuid", "3f2504e0-4f89-11d3-9a0c-0305e82c3301", "3f2504e0-4f89-11d3-9a0c-0305e82c3301", nil},
		{"surrounding whitespace trimmed", " 42 ", "42", nil},
		{"leading zeros normalized", "007", "7", nil},
		{"explicit plus sign normalized", "+5", "5", nil},
		{"empty", "", "", domain.ErrInvalidID},
		{"garbage", "not-an-id", "", domain.ErrInvalidID},
		{"float", "4.2", "", domain.ErrInvalidID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.ParseNotificationID(tc.in)
			if err != tc.wantErr {
				t.Fatalf("expected err=%v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNotificationID_MarshalJSON(t *testing.T) {
	t.Run("numeric id is a JSON number", func(t *testing.T) {
		b, err := json.Marshal(domain.NotificationID("42"))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "42" {
			t.Fatalf("expected 42, got %s", b)
		}
	})

	t.Run("non-canonical integer is still a valid JSON number", func(t *testing.T) {
		for in, want := range map[string]string{"007": "7", "+5": "5", "-0": "0"} {
			b, err := json.Marshal(domain.NotificationID(in))
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", in, err)
			}
			if string(b) != want {
				t.Fatalf("%s: expected %s, got %s", in, want, b)
			}
		}
	})

	t.Run("uuid id is a JSON string", func(t *testing.T) {
		b, err := json.Marshal(domain.NotificationID("3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != `"3f2504e0-4f89-11d3-9a0c-0305e82c3301"` {
			t.Fatalf("unexpected encoding %s", b)
		}
	})

	t.Run("absent id is null", func(t *testing.T) {
		var id domain.NotificationID
		b, _ := json.Marshal(id)
		if string(b) != "null" {
			t.Fatalf("expected null, got %s", b)
		}
		if id.String() != "null" {
			t.Fatalf("expected String()=null, got %q", id.String())
		}
	})
}

func TestNotificationEvent_UnmarshalJSON(t *testing.T) {
	t.Run("numeric id and body kept verbatim", func(t *testing.T) {
		body := `{"id":7,"title":"Welcome","read":false}`
		var e domain.NotificationEvent
		if err := json.Unmarshal([]byte(body), &e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.ID != "7" {
			t.Fatalf("expected id=7, got %q", e.ID)
		}
		out, err := json.Marshal(e)
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != body {
			t.Fatalf("expected body to be forwarded unchanged, got %s", out)
		}
	})

	t.Run("string id", func(t *testing.T) {
		var e domain.NotificationEvent
		if err := json.Unmarshal([]byte(`{"id":"abc"}`), &e); err != nil {
			t.Fatal(err)
		}
		if e.ID != "abc" {
			t.Fatalf("expected id=abc, got %q", e.ID)
		}
	})

	t.Run("missing id is allowed", func(t *testing.T) {
		var e domain.NotificationEvent
		if err := json.Unmarshal([]byte(`{"title":"x"}`), &e); err != nil {
			t.Fatal(err)
		}
		if e.ID.String() != "null" {
			t.Fatalf("expected absent id, got %q", e.ID)
		}
	})

	t.Run("non-object body rejected", func(t *testing.T) {
		for _, body := range []string{`[1,2]`, `"text"`, `null`} {
			var e domain.NotificationEvent
			if err := json.Unmarshal([]byte(body), &e); err == nil {
				t.Fatalf("body %s: expected error", body)
			}
		}
	})
}

func TestNewNotificationEvent(t *testing.T) {
	e, err := domain.NewNotificationEvent("9", map[string]any{"title": "hi"})
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	raw, _ := json.Marshal(e)
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["id"] != float64(9) {
		t.Fatalf("expected numeric id 9, got %v", decoded["id"])
	}
	if decoded["title"] != "hi" {
		t.Fatalf("expected title=hi, got %v", decoded["title"])
	}
}

func TestDestination_IsValid(t *testing.T) {
	for _, d := range domain.Destinations {
		if !d.IsValid() {
			t.Fatalf("destination %q should be valid", d)
		}
	}
	if domain.Destination("notification.archived").IsValid() {
		t.Fatal("unknown destination should be invalid")
	}
}
