package entityref

import (
	"errors"
	"slices"
	"testing"

	"github.com/dalemusser/labhub/internal/app/system/querycache"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     Ref
		wantErr bool
	}{
		{"user ok", UserRef{UserID: "U1"}, false},
		{"user missing", UserRef{}, true},
		{"lab ok", LabRef{LabID: "L1"}, false},
		{"lab missing", LabRef{}, true},
		{"item ok", ItemRef{LabID: "L1", ItemID: "I1"}, false},
		{"item missing lab", ItemRef{ItemID: "I1"}, true},
		{"item missing id", ItemRef{LabID: "L1"}, true},
		{"membership ok", MembershipRef{LabID: "L1", UserID: "U1"}, false},
		{"membership missing user", MembershipRef{LabID: "L1"}, true},
		{"nil", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMissingID) {
				t.Errorf("err = %v, want ErrMissingID", err)
			}
		})
	}
}

func TestCollections(t *testing.T) {
	tests := []struct {
		ref  Ref
		want []querycache.Entity
	}{
		{UserRef{UserID: "U1"}, []querycache.Entity{querycache.Users, querycache.Items, querycache.Members}},
		{LabRef{LabID: "L1"}, []querycache.Entity{querycache.Labs, querycache.Items, querycache.Members}},
		{ItemRef{LabID: "L1", ItemID: "I1"}, []querycache.Entity{querycache.Items}},
		{MembershipRef{LabID: "L1", UserID: "U1"}, []querycache.Entity{querycache.Members}},
	}
	for _, tt := range tests {
		if got := Collections(tt.ref); !slices.Equal(got, tt.want) {
			t.Errorf("Collections(%s) = %v, want %v", tt.ref.Key(), got, tt.want)
		}
	}
}

func TestURLs(t *testing.T) {
	item := ItemRef{LabID: "L 1", ItemID: "I1"}
	if got, want := EditURL(item), "/labs/L%201/items/I1/edit"; got != want {
		t.Errorf("EditURL = %q, want %q", got, want)
	}
	if got, want := DeleteURL(item), "/labs/L%201/items/I1/delete"; got != want {
		t.Errorf("DeleteURL = %q, want %q", got, want)
	}
	if got, want := ListURL(item), "/labs/L%201/items"; got != want {
		t.Errorf("ListURL = %q, want %q", got, want)
	}

	m := MembershipRef{LabID: "L1", UserID: "U1"}
	if CanDelete(m) || DeleteURL(m) != "" {
		t.Error("memberships must not offer delete")
	}
	if got, want := EditURL(m), "/labs/L1/users/U1/edit"; got != want {
		t.Errorf("EditURL = %q, want %q", got, want)
	}
}

func TestDeleteWarning(t *testing.T) {
	if DeleteWarning(UserRef{UserID: "U1"}) == "" {
		t.Error("user delete should warn about cascading items")
	}
	for _, r := range []Ref{LabRef{LabID: "L1"}, ItemRef{LabID: "L1", ItemID: "I1"}} {
		if w := DeleteWarning(r); w != "" {
			t.Errorf("DeleteWarning(%s) = %q, want empty", r.Key(), w)
		}
	}
}

func TestKeysAreDistinct(t *testing.T) {
	refs := []Ref{
		UserRef{UserID: "X"},
		LabRef{LabID: "X"},
		ItemRef{LabID: "X", ItemID: "X"},
		MembershipRef{LabID: "X", UserID: "X"},
	}
	seen := map[string]bool{}
	for _, r := range refs {
		if seen[r.Key()] {
			t.Errorf("duplicate key %q", r.Key())
		}
		seen[r.Key()] = true
	}
}

func TestMenuFor(t *testing.T) {
	m := MenuFor(MembershipRef{LabID: "L1", UserID: "U1"})
	if m.DeleteURL != "" {
		t.Errorf("membership menu should have no delete, got %q", m.DeleteURL)
	}
	if m.EditLabel != "Edit Permissions" || m.EditURL != "/labs/L1/users/U1/edit" {
		t.Errorf("unexpected membership menu %+v", m)
	}

	m = MenuFor(ItemRef{LabID: "L1", ItemID: "I1"})
	if m.DeleteURL != "/labs/L1/items/I1/delete" || m.EditLabel != "Edit Item" {
		t.Errorf("unexpected item menu %+v", m)
	}
}
