package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/kryuchenko/kartoshka-bot/vote"
)

func TestAnonymousSerializationDropsAuthor(t *testing.T) {
	sub := NewSubmission(5, Anonymous, Payload{Kind: KindText, Text: "привет"}, "author-42")
	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "author") {
		t.Fatalf("serialized anonymous submission carries author: %s", data)
	}

	var got Submission
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.AuthorID != "" {
		t.Fatalf("author survived round-trip: %q", got.AuthorID)
	}
	if got.Visibility != Anonymous || got.Payload.Text != "привет" {
		t.Fatalf("round-trip lost content: %+v", got)
	}
}

func TestAttributedSerializationKeepsAuthor(t *testing.T) {
	sub := NewSubmission(6, Attributed, Payload{Kind: KindPhoto, FileURL: "https://cdn/img.png", Caption: "подпись"}, "author-42")
	sub.Votes.Record("rev", vote.Approve)
	data, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Submission
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.AuthorID != "author-42" {
		t.Fatalf("author = %q, want author-42", got.AuthorID)
	}
	if got.Votes["rev"] != vote.Approve {
		t.Fatalf("votes lost in round-trip: %v", got.Votes)
	}
}

func TestProjectionStripsVotes(t *testing.T) {
	sub := NewSubmission(7, Anonymous, Payload{Kind: KindVideo, FileURL: "https://cdn/v.mp4"}, "author-42")
	sub.Votes.Record("rev", vote.Urgent)

	p := sub.Project()
	if p.AuthorID != "" {
		t.Fatalf("anonymous projection carries author")
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "votes") {
		t.Fatalf("projection carries vote history: %s", data)
	}
}

func TestDisplayText(t *testing.T) {
	cases := []struct {
		name string
		p    Payload
		want string
	}{
		{"text", Payload{Kind: KindText, Text: "абв"}, "абв"},
		{"photo caption", Payload{Kind: KindPhoto, FileURL: "u", Caption: "подпись"}, "подпись"},
		{"video note no caption", Payload{Kind: KindVideoNote, FileURL: "u"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.p.DisplayText(); got != c.want {
				t.Fatalf("display text = %q, want %q", got, c.want)
			}
		})
	}
}
