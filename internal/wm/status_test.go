package wm

import "testing"

func TestPrintStatus_FocusedClient(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	rt.titles[10] = "~/src"
	rt.appIDs[10] = "foot"
	mapClient(t, s, rt, 10)

	rt.status.Reset()
	s.printStatus()
	want := "DP-1 title ~/src\n" +
		"DP-1 appid foot\n" +
		"DP-1 fullscreen 0\n" +
		"DP-1 floating 0\n" +
		"DP-1 selmon 1\n" +
		"DP-1 tags 1 1 1 0\n" +
		"DP-1 layout []=\n"
	if got := rt.status.String(); got != want {
		t.Fatalf("status =\n%s\nwant\n%s", got, want)
	}
}

func TestPrintStatus_NoFocus(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)

	rt.status.Reset()
	s.printStatus()
	want := "DP-1 title \n" +
		"DP-1 appid \n" +
		"DP-1 fullscreen \n" +
		"DP-1 floating \n" +
		"DP-1 selmon 1\n" +
		"DP-1 tags 0 1 0 0\n" +
		"DP-1 layout []=\n"
	if got := rt.status.String(); got != want {
		t.Fatalf("status =\n%s\nwant\n%s", got, want)
	}
}

func TestPrintStatus_BrokenTitle(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	mapClient(t, s, rt, 10)

	st := s.Status()
	if st.Monitors[0].Title != brokenField || st.Monitors[0].AppID != brokenField {
		t.Fatalf("missing title/app id should be reported as %q: %+v", brokenField, st.Monitors[0])
	}
}

func TestStatus_Snapshot(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)
	addOutput(t, s, 2, "DP-2", 1280, 800)
	a := mapClient(t, s, rt, 10)
	b := mapClient(t, s, rt, 11)
	s.ActivateRequest(a.surface)

	st := s.Status()
	if st.TagCount != 9 || st.Locked || st.Cursor != "normal" {
		t.Fatalf("status header = %+v", st)
	}
	if len(st.Monitors) != 2 || len(st.Clients) != 2 {
		t.Fatalf("monitors=%d clients=%d", len(st.Monitors), len(st.Clients))
	}
	m := st.Monitors[0]
	if !m.Selected || m.Clients != 2 || m.Urgent != 1 || m.Mfact != 0.55 {
		t.Fatalf("monitor status = %+v", m)
	}
	if st.Monitors[1].Selected || st.Monitors[1].HasFocus {
		t.Fatalf("second monitor status = %+v", st.Monitors[1])
	}
	if st.Clients[0].Surface != b.surface || !st.Clients[0].Focused || st.Clients[0].Monitor != "DP-1" {
		t.Fatalf("first client should be the focused newest one: %+v", st.Clients[0])
	}
	if !st.Clients[1].Urgent {
		t.Fatalf("urgent flag missing: %+v", st.Clients[1])
	}
}

func TestStatus_EmittedOnViewChange(t *testing.T) {
	s, rt := newTestServer(t)
	addOutput(t, s, 1, "DP-1", 1280, 800)

	rt.status.Reset()
	s.View(1 << 1)
	if rt.status.Len() == 0 {
		t.Fatalf("view change should emit status")
	}
}
