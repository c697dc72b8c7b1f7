package pointid

import "testing"

func TestFromIdentity_Deterministic(t *testing.T) {
	a := FromIdentity("https://example.com/van-ban/luat-giao-thong")
	b := FromIdentity("https://example.com/van-ban/luat-giao-thong")
	if a != b {
		t.Errorf("same identity produced different ids: %s vs %s", a, b)
	}
}

func TestFromIdentity_DistinctIdentities(t *testing.T) {
	a := FromIdentity("https://example.com/doc-a")
	b := FromIdentity("https://example.com/doc-b")
	if a == b {
		t.Error("distinct identities must map to distinct ids")
	}
}

func TestFromIdentity_UUIDShape(t *testing.T) {
	id := FromIdentity("https://example.com/doc")
	if len(id) != 36 {
		t.Errorf("expected canonical UUID string, got %q", id)
	}
}
