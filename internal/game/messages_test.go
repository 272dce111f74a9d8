package game

import (
	"fmt"
	"testing"
)

func TestMessageLog_Wraps(t *testing.T) {
	ml := NewMessageLog()
	for i := range msgMaxEntries + 5 {
		ml.Add(i, fmt.Sprintf("m%d", i))
	}
	got := ml.Recent()
	if len(got) != msgMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), msgMaxEntries)
	}
	if got[0].Tick != 5 || got[len(got)-1].Tick != msgMaxEntries+4 {
		t.Errorf("order = %d..%d", got[0].Tick, got[len(got)-1].Tick)
	}
}

func TestMessageLog_IgnoresEmpty(t *testing.T) {
	ml := NewMessageLog()
	ml.Add(1, "")
	if len(ml.Recent()) != 0 {
		t.Errorf("empty message stored")
	}
}

func TestMessageLog_VisibleLimitsAndExpires(t *testing.T) {
	ml := NewMessageLog()
	for i := range 8 {
		ml.Add(i, fmt.Sprintf("m%d", i))
	}
	vis := ml.Visible()
	if len(vis) != msgVisible || vis[len(vis)-1].Text != "m7" {
		t.Fatalf("visible = %+v", vis)
	}
	ml.Update(msgLifetime)
	if n := len(ml.Visible()); n != 0 {
		t.Errorf("%d messages outlived their lifetime", n)
	}
	ml.Add(9, "fresh")
	if vis := ml.Visible(); len(vis) != 1 || vis[0].Text != "fresh" {
		t.Errorf("visible after expiry = %+v", vis)
	}
}
