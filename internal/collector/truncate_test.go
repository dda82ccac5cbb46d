package collector

import "testing"

func TestTruncateMiddle_ShortStringUnchanged(t *testing.T) {
	if got := truncateMiddle("short", 80); got != "short" {
		t.Errorf("truncateMiddle = %q, want unchanged", got)
	}
}

func TestTruncateMiddle_LongStringElided(t *testing.T) {
	s := "bin/very/long/path/to/executable/trial/case-with-a-very-long-name-indeed"
	got := truncateMiddle(s, 20)
	if len(got) != 20 {
		t.Errorf("len(truncateMiddle(...)) = %d, want 20", len(got))
	}
	if got[:8] != s[:8] || got[len(got)-8:] != s[len(s)-8:] {
		t.Errorf("truncateMiddle(%q, 20) = %q, want matching prefix/suffix", s, got)
	}
}
