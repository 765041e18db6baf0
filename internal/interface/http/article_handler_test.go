package handlers

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTagListAcceptsArrayOrCSV(t *testing.T) {
	cases := []struct {
		body string
		want []string
	}{
		{`{"tags":["go"," web ",""]}`, []string{"go", "web"}},
		{`{"tags":"go, web,,"}`, []string{"go", "web"}},
		{`{"tags":""}`, []string{}},
	}
	for _, tc := range cases {
		var req createArticleRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("%s: %v", tc.body, err)
		}
		if got := req.tags(); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: got %#v want %#v", tc.body, got, tc.want)
		}
	}

	var req createArticleRequest
	if err := json.Unmarshal([]byte(`{"tags":42}`), &req); err == nil {
		t.Fatal("numeric tags should be rejected")
	}
}

func TestCreateRequestFallsBackToFormTags(t *testing.T) {
	req := createArticleRequest{TagsCSV: " a ,b"}
	if got := req.tags(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %#v", got)
	}
}

func TestUpdateRequestInput(t *testing.T) {
	csv := "x, y"
	cat := "Science"
	in := updateArticleRequest{Category: &cat, TagsCSV: &csv}.input()
	if in.Category == nil || string(*in.Category) != "Science" {
		t.Fatalf("category not carried: %+v", in)
	}
	if in.Tags == nil || !reflect.DeepEqual(*in.Tags, []string{"x", "y"}) {
		t.Fatalf("tags not carried: %+v", in.Tags)
	}
	if in.Title != nil || in.Content != nil {
		t.Fatal("absent fields must stay nil")
	}

	empty := updateArticleRequest{}.input()
	if empty.Tags != nil || empty.Category != nil {
		t.Fatal("empty request should not touch tags or category")
	}
}

func TestSizeLabel(t *testing.T) {
	for n, want := range map[int64]string{5 << 20: "5 MB", 1 << 10: "1 KB", 1500: "1500 bytes"} {
		if got := sizeLabel(n); got != want {
			t.Errorf("sizeLabel(%d) = %q, want %q", n, got, want)
		}
	}
}
