package diag

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestKindOf(t *testing.T) {
	pe := &ParseError{Annotated: "x"}
	se := &StorageError{Op: "read", Path: "/tmp/x", Err: os.ErrPermission}
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{errors.New("boom"), KindCompiler},
		{pe, KindParse},
		{fmt.Errorf("wrapped: %w", pe), KindParse},
		{se, KindStorage},
		{fmt.Errorf("wrapped: %w", se), KindStorage},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
	if !errors.Is(se, os.ErrPermission) {
		t.Fatal("StorageError must unwrap to its cause")
	}
	if pe.Kind() != KindParse || se.Kind() != KindStorage {
		t.Fatal("Kind methods disagree with KindOf")
	}
}

func TestBagOrdersByPath(t *testing.T) {
	b := NewBag(0)
	b.Add("b.coffee", &ParseError{Line: 3})
	b.Add("a.coffee", errors.New("x"))
	b.Add("b.coffee", &ParseError{Line: 1})
	b.Add("c.coffee", nil)

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if items[0].Path != "a.coffee" || items[1].Err.(*ParseError).Line != 1 || items[2].Err.(*ParseError).Line != 3 {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !b.HasErrors() {
		t.Fatal("HasErrors = false")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add("a", errors.New("1")) {
		t.Fatal("first add rejected")
	}
	if b.Add("b", errors.New("2")) {
		t.Fatal("add beyond limit accepted")
	}
	if b.Len() != 1 {
		t.Fatalf("Len = %d", b.Len())
	}
}
