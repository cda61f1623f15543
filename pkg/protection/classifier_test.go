package protection

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		ev   InputEvent
		want Kind
	}{
		{"context menu", InputEvent{Type: EventContextMenu}, KindContextMenu},
		{"copy event", InputEvent{Type: EventCopy}, KindCopyPaste},
		{"cut event", InputEvent{Type: EventCut}, KindCopyPaste},
		{"paste event", InputEvent{Type: EventPaste}, KindCopyPaste},
		{"print event", InputEvent{Type: EventPrint}, KindScreenshot},
		{"ctrl+c", InputEvent{Type: EventKeyDown, Key: "c", Ctrl: true}, KindCopyPaste},
		{"cmd+v", InputEvent{Type: EventKeyDown, Key: "v", Meta: true}, KindCopyPaste},
		{"ctrl+x", InputEvent{Type: EventKeyDown, Key: "x", Ctrl: true}, KindCopyPaste},
		{"print screen key", InputEvent{Type: EventKeyDown, Key: "PrintScreen"}, KindScreenshot},
		{"cmd+shift+4", InputEvent{Type: EventKeyDown, Key: "4", Meta: true, Shift: true}, KindScreenshot},
		{"win+shift+s", InputEvent{Type: EventKeyDown, Key: "s", Meta: true, Shift: true}, KindScreenshot},
		{"ctrl+p", InputEvent{Type: EventKeyDown, Key: "p", Ctrl: true}, KindScreenshot},
		{"f12", InputEvent{Type: EventKeyDown, Key: "F12"}, KindDeveloperTools},
		{"ctrl+shift+i", InputEvent{Type: EventKeyDown, Key: "i", Ctrl: true, Shift: true}, KindDeveloperTools},
		{"ctrl+shift+j", InputEvent{Type: EventKeyDown, Key: "j", Ctrl: true, Shift: true}, KindDeveloperTools},
		{"ctrl+shift+c", InputEvent{Type: EventKeyDown, Key: "c", Ctrl: true, Shift: true}, KindDeveloperTools},
		{"ctrl+u view source", InputEvent{Type: EventKeyDown, Key: "u", Ctrl: true}, KindDeveloperTools},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep, ok := Classify(tc.ev)
			if !ok {
				t.Fatalf("expected a classification for %+v", tc.ev)
			}
			if rep.Kind != tc.want {
				t.Errorf("expected %s, got %s", tc.want, rep.Kind)
			}
			if rep.Description == "" {
				t.Errorf("description must not be empty")
			}
		})
	}
}

func TestClassify_IgnoresOrdinaryInput(t *testing.T) {
	cases := []InputEvent{
		{Type: EventKeyDown, Key: "a"},
		{Type: EventKeyDown, Key: "c"},              // no modifier
		{Type: EventKeyDown, Key: "p", Shift: true}, // shift alone
		{Type: EventKeyDown, Key: "Enter", Ctrl: true},
	}
	for _, ev := range cases {
		if _, ok := Classify(ev); ok {
			t.Errorf("ordinary input %+v must not classify", ev)
		}
	}
}

func TestKindDescription_GenericFallback(t *testing.T) {
	if Kind("SOMETHING_ELSE").Description() != "Unauthorized activity detected" {
		t.Errorf("unknown kinds must fall back to the generic description")
	}
}
