package core

import "testing"

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in    string
		want  Category
		valid bool
	}{
		{"qualify", CategoryQualify, true},
		{" Objection \n", CategoryObjection, true},
		{"NURTURE", CategoryNurture, true},
		{"follow_up", CategoryFollowUp, true},
		{"tools", CategoryTools, true},
		{"", "", false},
		{"purchase", "", false},
		{"follow up", "", false},
	}
	for _, c := range cases {
		got, ok := ParseCategory(c.in)
		if ok != c.valid || got != c.want {
			t.Fatalf("ParseCategory(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.valid)
		}
	}
}

func TestStageTerminal(t *testing.T) {
	if !StageEnd.Terminal() || !StageEscalate.Terminal() {
		t.Fatalf("end and escalate must be terminal")
	}
	for _, s := range []Stage{StageClassify, StageQualify, StageObjection, StageNurture, StageClose, StageFollowUp, StageAuthorize, StageTools} {
		if s.Terminal() {
			t.Fatalf("stage %q must not be terminal", s)
		}
	}
}
