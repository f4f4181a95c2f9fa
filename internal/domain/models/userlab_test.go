package models

import (
	"encoding/json"
	"testing"
)

func TestUserLabsPublic_DecodesPagedObject(t *testing.T) {
	var p UserLabsPublic
	body := `{"data":[{"userlab_id":"m1","user_id":"u1","lab_id":"L1","can_edit_users":true}],"count":7}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Count != 7 {
		t.Errorf("Count: got %d, want 7", p.Count)
	}
	if len(p.Data) != 1 || !p.Data[0].CanEditUsers {
		t.Errorf("unexpected data: %+v", p.Data)
	}
}

func TestUserLabsPublic_DecodesBareArray(t *testing.T) {
	var p UserLabsPublic
	body := ` [{"userlab_id":"m1","user_id":"u1","lab_id":"L1"},{"userlab_id":"m2","user_id":"u2","lab_id":"L1"}]`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Count != 2 || len(p.Data) != 2 {
		t.Errorf("got count=%d len=%d, want 2/2", p.Count, len(p.Data))
	}
}

func TestUserLabPublic_Can(t *testing.T) {
	m := UserLabPublic{CanEditItems: true}
	tests := []struct {
		c    Capability
		want bool
	}{
		{CanEditLab, false},
		{CanEditItems, true},
		{CanEditUsers, false},
		{Capability("bogus"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			if got := m.Can(tt.c); got != tt.want {
				t.Errorf("Can(%q) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestDisplayNames(t *testing.T) {
	name := "Ada Lovelace"
	empty := ""
	if got := (UserPublic{Email: "a@x.io", FullName: &name}).DisplayName(); got != name {
		t.Errorf("user with name: got %q", got)
	}
	if got := (UserPublic{Email: "a@x.io", FullName: &empty}).DisplayName(); got != "a@x.io" {
		t.Errorf("user without name: got %q", got)
	}
	if got := (UserLabPublic{UserID: "u1"}).DisplayName(); got != "u1" {
		t.Errorf("member without name or email: got %q", got)
	}
}
