package matcher

import "testing"

func TestRelevantStructuredIDs(t *testing.T) {
	const tracked = "abcdef123456"
	cases := []struct {
		name    string
		payload map[string]any
		want    bool
	}{
		{name: "full id", payload: map[string]any{"orderId": "abcdef123456"}, want: true},
		{name: "short id", payload: map[string]any{"orderId": "123456"}, want: true},
		{name: "case and spaces", payload: map[string]any{"orderId": " ABCDEF123456 "}, want: true},
		{name: "other order", payload: map[string]any{"orderId": "zzzzzz999999"}, want: false},
		{name: "id field", payload: map[string]any{"id": "abcdef123456"}, want: true},
		{name: "bare order _id", payload: map[string]any{"_id": "abcdef123456", "status": "PREPARING"}, want: true},
		{name: "bare order of another id", payload: map[string]any{"_id": "zzzzzz999999"}, want: false},
		{name: "nested order id", payload: map[string]any{"order": map[string]any{"id": "abcdef123456"}}, want: true},
		{name: "nested order _id", payload: map[string]any{"order": map[string]any{"_id": "abcdef123456"}}, want: true},
		{name: "numeric id", payload: map[string]any{"orderId": 123456.0}, want: true},
		{name: "empty payload", payload: map[string]any{}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Relevant(tracked, Candidate{ID: CandidateID(tc.payload)})
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRelevantFreeText(t *testing.T) {
	const tracked = "abcdef123456"
	cases := []struct {
		msg  string
		want bool
	}{
		{"Order #123456 is ready", true},
		{"order abcdef123456 delivered", true},
		{"Your ORDER #ABCDEF123456 was picked up", true},
		{"Order #999999 is ready", false},
		{"Order assigned to you", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			if got := Relevant(tracked, Candidate{Message: tc.msg}); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRelevantLooseContainment(t *testing.T) {
	if !Relevant("ff00abcdef123456", Candidate{Message: "order #abcdef1234"}) {
		t.Fatal("expected candidate short form inside tracked id to match")
	}
}

func TestRelevantStructuredIDWinsOverText(t *testing.T) {
	c := Candidate{ID: "zzzzzz999999", Message: "Order #123456 is ready"}
	if Relevant("abcdef123456", c) {
		t.Fatal("structured id mismatch must not fall back to text")
	}
}

func TestRelevantShortIDs(t *testing.T) {
	if !Relevant("42", Candidate{ID: "42"}) {
		t.Fatal("expected raw equality for short ids")
	}
	if Relevant("42", Candidate{ID: "43"}) {
		t.Fatal("did not expect different short ids to match")
	}
	if Relevant("", Candidate{ID: ""}) {
		t.Fatal("empty ids never match")
	}
}

func TestNormalize(t *testing.T) {
	id := Normalize(" ABCDEF123456 ")
	if id.Full != "abcdef123456" || id.Short != "123456" {
		t.Fatalf("unexpected normalized id %+v", id)
	}
	id = Normalize("abc")
	if id.Short != "abc" {
		t.Fatalf("expected short form to equal full form, got %+v", id)
	}
}

func TestReferencedIDSkipsOwnID(t *testing.T) {
	payload := map[string]any{"id": "notification-1", "message": "hi"}
	if got := ReferencedID(payload); got != "" {
		t.Fatalf("expected no referenced id, got %q", got)
	}
	payload["orderId"] = "o1"
	if got := ReferencedID(payload); got != "o1" {
		t.Fatalf("expected o1, got %q", got)
	}
}

func TestCandidateIDPrefersID(t *testing.T) {
	if got := CandidateID(map[string]any{"id": "a-111111", "_id": "b-222222"}); got != "a-111111" {
		t.Fatalf("expected id before _id, got %q", got)
	}
	if got := CandidateID(map[string]any{"_id": "b-222222", "order": map[string]any{"_id": "c-333333"}}); got != "b-222222" {
		t.Fatalf("expected top-level _id before nested order, got %q", got)
	}
}
