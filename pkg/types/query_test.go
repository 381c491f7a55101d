package types

import (
	"encoding/json"
	"testing"
)

func TestSelectMap_UnmarshalJSON(t *testing.T) {
	var sel SelectMap
	doc := `{"email": true, "name": true, "posts": {"select": {"title": true}}}`
	if err := json.Unmarshal([]byte(doc), &sel); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(sel) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sel))
	}
	if sel["email"] != nil || sel["name"] != nil {
		t.Error("plain picks should decode as nil entries")
	}

	posts := sel["posts"]
	if posts == nil {
		t.Fatal("nested directive should decode as a Rel")
	}
	if len(posts.Select) != 1 || posts.Select["title"] != nil {
		t.Errorf("expected nested select on title, got %+v", posts.Select)
	}
}

func TestSelectMap_UnmarshalJSONFalse(t *testing.T) {
	var sel SelectMap
	if err := json.Unmarshal([]byte(`{"email": true, "name": false}`), &sel); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(sel) != 1 {
		t.Errorf("false entries should be dropped, got %v", sel)
	}
	if _, ok := sel["name"]; ok {
		t.Error("name should not be present")
	}
}

func TestIncludeMap_UnmarshalJSON(t *testing.T) {
	var q Query
	doc := `{"include": {"posts": {"select": {"title": true}, "relationLoadStrategy": "join"}}}`
	if err := json.Unmarshal([]byte(doc), &q); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	posts := q.Include["posts"]
	if posts == nil {
		t.Fatal("expected nested include entry")
	}
	if posts.Strategy != StrategyJoin {
		t.Errorf("expected join strategy, got %q", posts.Strategy)
	}
	if _, ok := posts.Select["title"]; !ok {
		t.Errorf("expected nested select on title, got %+v", posts.Select)
	}
}

func TestDirective_MarshalRoundTrip(t *testing.T) {
	in := Query{
		Select: SelectMap{
			"name":  nil,
			"posts": {Select: SelectMap{"title": nil}},
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out Query
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := out.Select["name"]; !ok {
		t.Error("name pick lost in round trip")
	}
	posts := out.Select["posts"]
	if posts == nil || len(posts.Select) != 1 {
		t.Errorf("nested directive lost in round trip: %+v", posts)
	}
}

func TestStrategy_Valid(t *testing.T) {
	for _, s := range []Strategy{StrategyDefault, StrategyJoin, StrategyQuery} {
		if !s.Valid() {
			t.Errorf("strategy %q should be valid", s)
		}
	}
	if Strategy("eager").Valid() {
		t.Error("unknown strategy should be invalid")
	}
}
