package session_test

import (
	"testing"

	"github.com/shashiranjanraj/bazaar/pkg/session"
)

func TestLoadStartsIdle(t *testing.T) {
	c := session.Load(100)
	if c.ChatID != 100 {
		t.Fatalf("chat id = %d, want 100", c.ChatID)
	}
	if !c.InState(session.StateNone) {
		t.Errorf("fresh chat should be idle, got state %q", c.State)
	}
}

func TestStateAndFieldsSurviveReload(t *testing.T) {
	c := session.Load(200)
	c.SetState("admin.add_stock")
	c.SetField("category_id", "42")
	c.Save()

	again := session.Load(200)
	if !again.InState("admin.add_stock") {
		t.Errorf("state lost on reload, got %q", again.State)
	}
	if got := again.Field("category_id"); got != "42" {
		t.Errorf("field = %q, want 42", got)
	}
	if got := again.FieldUint("category_id"); got != 42 {
		t.Errorf("FieldUint = %d, want 42", got)
	}
}

func TestFieldUintToleratesGarbage(t *testing.T) {
	c := session.Load(300)
	if got := c.FieldUint("missing"); got != 0 {
		t.Errorf("missing field = %d, want 0", got)
	}
	c.SetField("bad", "banana")
	if got := c.FieldUint("bad"); got != 0 {
		t.Errorf("garbage field = %d, want 0", got)
	}
}

func TestResetDropsFlow(t *testing.T) {
	c := session.Load(400)
	c.SetState("admin.import")
	c.SetField("x", "1")
	c.Save()

	session.Reset(400)

	again := session.Load(400)
	if !again.InState(session.StateNone) {
		t.Errorf("reset chat should be idle, got %q", again.State)
	}
	if again.Field("x") != "" {
		t.Errorf("reset chat kept field %q", again.Field("x"))
	}
}
