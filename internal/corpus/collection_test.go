package corpus

import (
	"errors"
	"reflect"
	"testing"
)

func TestCollection(t *testing.T) {
	t.Run("add_get", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		s := NewSpeaker("alice")
		c.Add(s)
		got, err := c.Get("alice")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != s {
			t.Error("Get returned a different entity")
		}
	})

	t.Run("missing_name_is_not_found", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		if _, err := c.Get("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get error = %v, want ErrNotFound", err)
		}
		if err := c.Remove("ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Remove error = %v, want ErrNotFound", err)
		}
	})

	t.Run("last_write_wins_keeps_position", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		first := NewSpeaker("alice")
		c.Add(first)
		c.Add(NewSpeaker("bob"))
		second := NewSpeaker("alice")
		c.Add(second)

		if c.Len() != 2 {
			t.Fatalf("Len = %d, want 2", c.Len())
		}
		got, _ := c.Get("alice")
		if got != second {
			t.Error("second add should replace the stored entity")
		}
		if names := c.Names(); !reflect.DeepEqual(names, []string{"alice", "bob"}) {
			t.Errorf("Names = %v, replaced entry should keep its slot", names)
		}
	})

	t.Run("insertion_order", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		for _, n := range []string{"carol", "alice", "bob"} {
			c.Add(NewSpeaker(n))
		}
		if names := c.Names(); !reflect.DeepEqual(names, []string{"carol", "alice", "bob"}) {
			t.Errorf("Names = %v", names)
		}
		all := c.All()
		if len(all) != 3 || all[0].Name() != "carol" || all[2].Name() != "bob" {
			t.Errorf("All = %v", all)
		}
	})

	t.Run("remove_keeps_order", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		for _, n := range []string{"a", "b", "c"} {
			c.Add(NewSpeaker(n))
		}
		if err := c.Remove("b"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if names := c.Names(); !reflect.DeepEqual(names, []string{"a", "c"}) {
			t.Errorf("Names = %v", names)
		}
	})

	t.Run("contains_name_or_entity", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		s := NewSpeaker("alice")
		c.Add(s)
		if !c.Contains("alice") {
			t.Error("Contains(name) = false")
		}
		if !c.Contains(s) {
			t.Error("Contains(entity) = false")
		}
		if !c.Contains(NewSpeaker("alice")) {
			t.Error("Contains should match by name, not pointer")
		}
		if c.Contains("bob") {
			t.Error("Contains(unknown) = true")
		}
		if c.Contains(42) {
			t.Error("Contains(non-entity) = true")
		}
	})

	t.Run("update", func(t *testing.T) {
		a := NewCollection[*Speaker]()
		a.Add(NewSpeaker("alice"))
		b := NewCollection[*Speaker]()
		replacement := NewSpeaker("alice")
		b.Add(replacement)
		b.Add(NewSpeaker("bob"))

		a.Update(b)
		if a.Len() != 2 {
			t.Fatalf("Len = %d, want 2", a.Len())
		}
		got, _ := a.Get("alice")
		if got != replacement {
			t.Error("Update should replace same-named entries")
		}

		a.UpdateItems(NewSpeaker("carol"))
		if !a.Contains("carol") {
			t.Error("UpdateItems did not add")
		}
	})

	t.Run("empty", func(t *testing.T) {
		c := NewCollection[*Speaker]()
		if !c.Empty() {
			t.Error("new collection should be empty")
		}
		c.Add(NewSpeaker("x"))
		if c.Empty() {
			t.Error("collection with entries reported empty")
		}
	})
}
