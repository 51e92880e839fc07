package effects

import "testing"

func TestContains(t *testing.T) {
	effs := []Effect{
		NotifyEffect{Level: LevelSuccess, Message: "ok"},
		CompositeEffect{Effects: []Effect{ClearDraftEffect{}}},
	}

	if !Contains(effs, "notify") {
		t.Error("expected notify effect")
	}
	if !Contains(effs, "clear_draft") {
		t.Error("expected nested clear_draft effect")
	}
	if Contains(effs, "close_modal") {
		t.Error("did not expect close_modal effect")
	}
}
